package core

import (
	"context"
	"sync"

	"github.com/redactyl/gdprmask/internal/detectors"
	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type Request = engine.Request
type Result = types.Result
type MaskedEntity = types.MaskedEntity
type BatchItem = engine.BatchItem
type DetectorFailure = engine.DetectorFailure

// ErrInvalidText is returned for input that is not valid UTF-8.
var ErrInvalidText = engine.ErrInvalidText

var defaultEngine = sync.OnceValue(func() *engine.Engine { return engine.New() })

// Anonymize is the stable entrypoint for other programs. It uses the offline
// detector set shared by every caller of this package.
func Anonymize(ctx context.Context, text string, req Request) (Result, error) {
	return defaultEngine().Anonymize(ctx, text, req)
}

// AnonymizeBatch anonymizes texts concurrently; items keep input order.
func AnonymizeBatch(ctx context.Context, texts []string, req Request) []BatchItem {
	return defaultEngine().AnonymizeBatch(ctx, texts, req)
}

// Languages returns the supported language codes.
func Languages() []string {
	var out []string
	for _, l := range types.Languages() {
		out = append(out, string(l))
	}
	return out
}

// EntityTypes returns every entity type name that can appear in a result.
func EntityTypes() []string {
	var out []string
	for _, t := range types.EntityTypes() {
		out = append(out, string(t))
	}
	return out
}

// DetectorIDs returns the pattern and regional rule IDs.
// This is exposed for convenience to avoid importing internals directly.
func DetectorIDs() []string { return detectors.IDs() }
