package detectors

import (
	"context"

	"github.com/redactyl/gdprmask/internal/ner"
	"github.com/redactyl/gdprmask/internal/types"
)

// nerLabels maps base NER labels to entity types. Labels not listed here
// (MISC and anything a model invents) are dropped.
var nerLabels = map[string]types.EntityType{
	"PER":       types.PER,
	"DERIV-PER": types.PER,
	"LOC":       types.LOC,
	"ORG":       types.ORG,
}

// NERDetector adapts a statistical tagger to the Detector contract.
type NERDetector struct {
	reg *ner.Registry
}

// NewNER returns a detector that asks reg for the language's model.
func NewNER(reg *ner.Registry) *NERDetector { return &NERDetector{reg: reg} }

func (d *NERDetector) Method() types.Method { return types.MethodNER }

func (d *NERDetector) Detect(ctx context.Context, text string, lang types.Language) ([]types.Span, error) {
	if !lang.Supported() {
		return nil, nil
	}
	model, err := d.reg.Get(ctx, lang)
	if err != nil {
		return nil, err
	}
	ents, err := model.Infer(ctx, text)
	if err != nil {
		return nil, err
	}
	rs := []rune(text)
	out := make([]types.Span, 0, len(ents))
	for _, e := range ents {
		typ, ok := nerLabels[ner.BaseLabel(e.Label)]
		if !ok {
			continue
		}
		sp := types.Span{Start: e.Start, End: e.End, Type: typ, Confidence: types.ConfHigh, Method: types.MethodNER}
		// out-of-range offsets keep an empty Text so the merger rejects them
		if e.Start >= 0 && e.Start < e.End && e.End <= len(rs) {
			sp.Text = string(rs[e.Start:e.End])
		}
		out = append(out, sp)
	}
	return out, nil
}
