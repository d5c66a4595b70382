package detectors

import (
	"context"
	"regexp"
	"sort"

	"github.com/redactyl/gdprmask/internal/ner"
	"github.com/redactyl/gdprmask/internal/phone"
	"github.com/redactyl/gdprmask/internal/types"
)

// Detector scans text for one family of entities. A detector returns nil, nil
// for languages it does not support. An error means the detector failed and
// contributes no spans for this call.
type Detector interface {
	Method() types.Method
	Detect(ctx context.Context, text string, lang types.Language) ([]types.Span, error)
}

// Rule is one row of a pattern or regional table.
type Rule struct {
	ID         string
	Type       types.EntityType
	Re         *regexp.Regexp
	Confidence types.Confidence
}

// Validated reports whether matches of the rule must pass a checksum or
// shape validator before they are reported.
func (r Rule) Validated() bool {
	_, ok := ruleValidators[r.ID]
	return ok
}

// New returns the detectors in registration order: NER, phone, pattern,
// regional. A nil registry or finder leaves that detector out.
func New(reg *ner.Registry, finder phone.Finder) []Detector {
	var out []Detector
	if reg != nil {
		out = append(out, NewNER(reg))
	}
	if finder != nil {
		out = append(out, NewPhone(finder))
	}
	out = append(out, NewPattern(), NewRegional())
	return out
}

// Without filters out detectors whose method is listed in disabled.
func Without(ds []Detector, disabled ...types.Method) []Detector {
	if len(disabled) == 0 {
		return ds
	}
	skip := make(map[types.Method]bool, len(disabled))
	for _, m := range disabled {
		skip[m] = true
	}
	out := make([]Detector, 0, len(ds))
	for _, d := range ds {
		if !skip[d.Method()] {
			out = append(out, d)
		}
	}
	return out
}

// ByMethod returns the first detector using method m.
func ByMethod(ds []Detector, m types.Method) (Detector, bool) {
	for _, d := range ds {
		if d.Method() == m {
			return d, true
		}
	}
	return nil, false
}

// Rules lists the pattern rules followed by the regional rules for lang.
func Rules(lang types.Language) []Rule {
	if !lang.Supported() {
		return nil
	}
	out := make([]Rule, 0, len(patternRules)+len(regionalRules[lang]))
	out = append(out, patternRules...)
	out = append(out, regionalRules[lang]...)
	return out
}

// PatternRules lists the language-independent structured-data rules.
func PatternRules() []Rule {
	return append([]Rule(nil), patternRules...)
}

// RegionalRules lists only the country-specific identifier rules for lang.
func RegionalRules(lang types.Language) []Rule {
	return append([]Rule(nil), regionalRules[lang]...)
}

// IDs returns every rule ID across all languages, sorted.
func IDs() []string {
	seen := map[string]bool{}
	for _, r := range patternRules {
		seen[r.ID] = true
	}
	for _, rs := range regionalRules {
		for _, r := range rs {
			seen[r.ID] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// dedupe drops spans that repeat an earlier span's range and type, which
// happens when several rules of one table match the same text.
func dedupe(spans []types.Span) []types.Span {
	type key struct {
		start, end int
		typ        types.EntityType
	}
	seen := make(map[key]bool, len(spans))
	var result []types.Span
	for _, s := range spans {
		k := key{s.Start, s.End, s.Type}
		if !seen[k] {
			seen[k] = true
			result = append(result, s)
		}
	}
	return result
}
