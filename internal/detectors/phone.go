package detectors

import (
	"context"

	"github.com/redactyl/gdprmask/internal/phone"
	"github.com/redactyl/gdprmask/internal/types"
)

// phoneRegions is the default numbering region per language.
var phoneRegions = map[types.Language]string{
	types.Slovenian:  "SI",
	types.Croatian:   "HR",
	types.Serbian:    "RS",
	types.Bulgarian:  "BG",
	types.Macedonian: "MK",
}

// RegionFor returns the default phone region for lang.
func RegionFor(lang types.Language) (string, bool) {
	r, ok := phoneRegions[lang]
	return r, ok
}

// PhoneDetector reports numbers the phone library validates.
type PhoneDetector struct {
	finder phone.Finder
}

// NewPhone returns a detector backed by finder.
func NewPhone(finder phone.Finder) *PhoneDetector { return &PhoneDetector{finder: finder} }

func (d *PhoneDetector) Method() types.Method { return types.MethodPhone }

func (d *PhoneDetector) Detect(ctx context.Context, text string, lang types.Language) ([]types.Span, error) {
	region, ok := RegionFor(lang)
	if !ok {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rs := []rune(text)
	var out []types.Span
	for _, m := range d.finder.FindNumbers(text, region) {
		sp := types.Span{Start: m.Start, End: m.End, Type: types.Phone, Confidence: types.ConfHigh, Method: types.MethodPhone}
		if m.Start >= 0 && m.Start < m.End && m.End <= len(rs) {
			sp.Text = string(rs[m.Start:m.End])
		}
		out = append(out, sp)
	}
	return out, nil
}
