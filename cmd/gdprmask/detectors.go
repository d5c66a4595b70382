package gdprmask

import (
	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/detectors"
	"github.com/redactyl/gdprmask/internal/report"
	"github.com/redactyl/gdprmask/internal/types"
)

type ruleInfo struct {
	ID         string           `json:"id"`
	Type       types.EntityType `json:"type"`
	Confidence types.Confidence `json:"confidence"`
	Checksum   bool             `json:"checksum"`
}

type detectorsInfo struct {
	Language  types.Language `json:"language"`
	Detectors []types.Method `json:"detectors"`
	Rules     []ruleInfo     `json:"rules"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "List the active detectors and the rules for a language",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang, err := resolveLanguage()
			if err != nil {
				return err
			}
			e, err := buildEngine()
			if err != nil {
				return err
			}
			ds := e.Detectors()
			rules := detectors.Rules(lang)

			out := cmd.OutOrStdout()
			if !flagJSON {
				report.PrintRules(out, lang, ds, rules)
				return nil
			}
			info := detectorsInfo{Language: lang, Detectors: []types.Method{}, Rules: []ruleInfo{}}
			for _, d := range ds {
				info.Detectors = append(info.Detectors, d.Method())
			}
			for _, r := range rules {
				info.Rules = append(info.Rules, ruleInfo{ID: r.ID, Type: r.Type, Confidence: r.Confidence, Checksum: r.Validated()})
			}
			return report.WriteJSON(out, info, !noColor(out))
		},
	}
	cmd.Flags().StringVar(&flagDisable, "disable", "", "comma-separated detectors to leave out")
	rootCmd.AddCommand(cmd)
}
