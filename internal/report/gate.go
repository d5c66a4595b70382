package report

import (
	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/types"
)

// ShouldFail reports whether any file, cached or processed, reached the
// failOn risk level ("low", "medium" or "high"; anything else means medium).
func ShouldFail(files []engine.FileOutcome, failOn string) bool {
	th := types.RiskLevel(failOn).Rank()
	if th == 0 {
		th = types.RiskMed.Rank()
	}
	for _, f := range files {
		if f.Err != nil || f.Result.TotalMasked == 0 {
			continue
		}
		if f.Result.PrivacyRisk.Rank() >= th {
			return true
		}
	}
	return false
}
