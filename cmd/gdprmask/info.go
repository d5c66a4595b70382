package gdprmask

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/detectors"
	"github.com/redactyl/gdprmask/internal/phone"
	"github.com/redactyl/gdprmask/internal/report"
	"github.com/redactyl/gdprmask/internal/types"
)

type capability struct {
	Description string                      `json:"description"`
	Entities    []types.EntityType          `json:"supported_entities"`
	Languages   []types.Language            `json:"supported_languages,omitempty"`
	Regions     []string                    `json:"regions,omitempty"`
	Identifiers map[types.Language][]string `json:"supported_countries,omitempty"`
}

type capabilities struct {
	Service        string                      `json:"service"`
	Version        string                      `json:"version"`
	Languages      []types.Language            `json:"languages"`
	EntityTypes    []types.EntityType          `json:"entity_types"`
	Capabilities   map[types.Method]capability `json:"capabilities"`
	MaskingOptions map[string]string           `json:"masking_options"`
}

func ruleTypes(rules []detectors.Rule) []types.EntityType {
	var out []types.EntityType
	for _, r := range rules {
		if !slices.Contains(out, r.Type) {
			out = append(out, r.Type)
		}
	}
	return out
}

func describeCapabilities() capabilities {
	identifiers := map[types.Language][]string{}
	regions := append([]string(nil), phone.DefaultExtraRegions...)
	var regional []detectors.Rule
	for _, lang := range types.Languages() {
		for _, r := range detectors.RegionalRules(lang) {
			identifiers[lang] = append(identifiers[lang], r.ID)
			regional = append(regional, r)
		}
		if reg, ok := detectors.RegionFor(lang); ok && !slices.Contains(regions, reg) {
			regions = append(regions, reg)
		}
	}

	return capabilities{
		Service:     "gdprmask",
		Version:     version,
		Languages:   types.Languages(),
		EntityTypes: types.EntityTypes(),
		Capabilities: map[types.Method]capability{
			types.MethodNER: {
				Description: "Named entity recognition (persons, places, organisations)",
				Entities:    []types.EntityType{types.PER, types.LOC, types.ORG},
				Languages:   types.Languages(),
			},
			types.MethodPhone: {
				Description: "International and national phone number validation",
				Entities:    []types.EntityType{types.Phone},
				Regions:     regions,
			},
			types.MethodPattern: {
				Description: "Structured data patterns with checksum validation",
				Entities:    ruleTypes(detectors.PatternRules()),
			},
			types.MethodRegional: {
				Description: "Country-specific identifiers with checksum validation",
				Entities:    ruleTypes(regional),
				Identifiers: identifiers,
			},
		},
		MaskingOptions: map[string]string{
			"asterisk":    "Length-preserving mask characters (*)",
			"descriptive": "Descriptive tags (<MASKED_EMAIL>, <MASKED_PHONE>, ...)",
		},
	}
}

func init() {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show supported languages, entity types and detectors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := describeCapabilities()
			out := cmd.OutOrStdout()
			if flagJSON {
				return report.WriteJSON(out, c, !noColor(out))
			}
			fmt.Fprintf(out, "%s %s\n", c.Service, c.Version)
			fmt.Fprintf(out, "Languages: %s\n", joinLanguages())
			fmt.Fprintf(out, "Entity types: %s\n\n", joinTypes(c.EntityTypes))
			for _, m := range types.Methods() {
				cp := c.Capabilities[m]
				fmt.Fprintf(out, "%s: %s\n", m, cp.Description)
				fmt.Fprintf(out, "  entities: %s\n", joinTypes(cp.Entities))
				if len(cp.Regions) > 0 {
					fmt.Fprintf(out, "  regions: %s\n", strings.Join(cp.Regions, ", "))
				}
				for _, lang := range types.Languages() {
					if ids := cp.Identifiers[lang]; len(ids) > 0 {
						fmt.Fprintf(out, "  %s: %s\n", lang, strings.Join(ids, ", "))
					}
				}
			}
			fmt.Fprintln(out, "\nMasking: asterisk (default) or --descriptive")
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}

func joinTypes(ts []types.EntityType) string {
	s := make([]string, len(ts))
	for i, t := range ts {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}
