package report

import (
	"encoding/json"
	"io"

	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/risk"
	"github.com/redactyl/gdprmask/internal/types"
)

type sarif struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

func typeToLevel(t types.EntityType) string {
	if risk.IsHighRisk(t) {
		return "error"
	}
	return "warning"
}

// WriteSARIF writes one SARIF 2.1.0 result per masked entity of a batch run.
// Messages name the entity type and detection method, never the value.
// Cached files report the findings stored with their cache entry; failed
// files have no results.
func WriteSARIF(w io.Writer, files []engine.FileOutcome, version string) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "gdprmask", Version: version}},
		Results: []sarifResult{},
	}
	ruleIndex := map[types.EntityType]int{}
	for _, f := range files {
		if f.Err != nil {
			continue
		}
		for _, me := range f.Findings {
			idx, ok := ruleIndex[me.Type]
			if !ok {
				idx = len(run.Tool.Driver.Rules)
				ruleIndex[me.Type] = idx
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
					ID:               string(me.Type),
					ShortDescription: sarifMessage{Text: risk.Describe(me.Type)},
				})
			}
			run.Results = append(run.Results, sarifResult{
				RuleID:    string(me.Type),
				RuleIndex: idx,
				Level:     typeToLevel(me.Type),
				Message:   sarifMessage{Text: string(me.Type) + " detected by " + string(me.Method)},
				Locations: []sarifLoc{{
					PhysicalLocation: sarifPhys{
						ArtifactLocation: sarifArt{URI: f.Path},
						Region:           sarifRegion{StartLine: me.StartLine, StartColumn: me.StartCol, EndLine: me.EndLine, EndColumn: me.EndCol},
					},
				}},
			})
		}
	}
	doc := sarif{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
