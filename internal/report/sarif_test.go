package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/gdprmask/internal/cache"
	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/types"
)

func TestWriteSARIF(t *testing.T) {
	entities := []types.MaskedEntity{
		{Type: types.PER, Method: types.MethodNER, Start: 7, End: 10, Original: "Ana"},
		{Type: types.IBAN, Method: types.MethodRegional, Start: 17, End: 21, Original: "SI56"},
		{Type: types.PER, Method: types.MethodNER, Start: 0, End: 6, Original: "Zdravo"},
	}
	files := []engine.FileOutcome{
		{
			Path:     "notes/a.txt",
			Result:   types.Result{MaskedEntities: entities},
			Findings: cache.FindingsOf("Zdravo\nAna, IBAN SI56...", entities),
		},
		{Path: "cached.txt", Cached: true, Findings: []cache.Finding{}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, files, "1.2.3"))
	assert.NotContains(t, buf.String(), "Ana")

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	require.Len(t, run.Tool.Driver.Rules, 2)
	require.Len(t, run.Results, 3)

	first := run.Results[0]
	assert.Equal(t, "PER", first.RuleID)
	assert.Equal(t, 0, first.RuleIndex)
	assert.Equal(t, "warning", first.Level)
	assert.Equal(t, "notes/a.txt", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 2, first.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, 1, first.Locations[0].PhysicalLocation.Region.StartColumn)

	second := run.Results[1]
	assert.Equal(t, "IBAN", second.RuleID)
	assert.Equal(t, 1, second.RuleIndex)
	assert.Equal(t, "error", second.Level)
	assert.Equal(t, 11, second.Locations[0].PhysicalLocation.Region.StartColumn)

	assert.Equal(t, 0, run.Results[2].RuleIndex)
}

func TestShouldFail(t *testing.T) {
	files := []engine.FileOutcome{
		{Path: "a", Result: types.Result{TotalMasked: 1, PrivacyRisk: types.RiskMed}},
		{Path: "b", Cached: true},
	}
	assert.True(t, ShouldFail(files, "medium"))
	assert.True(t, ShouldFail(files, ""))
	assert.False(t, ShouldFail(files, "high"))
	assert.True(t, ShouldFail(files, "low"))
	assert.False(t, ShouldFail(nil, "low"))

	cached := []engine.FileOutcome{
		{Path: "c", Cached: true, Result: types.Result{TotalMasked: 1, PrivacyRisk: types.RiskHigh}},
	}
	assert.True(t, ShouldFail(cached, "high"))
}
