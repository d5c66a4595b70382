package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/redactyl/gdprmask/internal/types"
)

// BatchItem is the outcome for one text of a batch. Exactly one of Result
// and Err is meaningful.
type BatchItem struct {
	Index  int
	Result types.Result
	Err    error
}

// AnonymizeBatch anonymizes texts concurrently with at most WithThreads
// workers. Items come back in input order and carry their own errors.
func (e *Engine) AnonymizeBatch(ctx context.Context, texts []string, req Request) []BatchItem {
	ctx, span := tracer.Start(ctx, "engine.batch", trace.WithAttributes(
		attribute.Int("texts", len(texts)),
	))
	defer span.End()

	items := make([]BatchItem, len(texts))
	var g errgroup.Group
	g.SetLimit(e.workers())
	for i, text := range texts {
		g.Go(func() error {
			res, err := e.Anonymize(ctx, text, req)
			items[i] = BatchItem{Index: i, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("failed", failed))
	return items
}
