// Package redact applies a resolved span set to text and rewrites files in
// place.
package redact

import (
	"strings"

	"github.com/redactyl/gdprmask/internal/merge"
	"github.com/redactyl/gdprmask/internal/types"
)

// DefaultMaskChar fills asterisk-mode masks.
const DefaultMaskChar = '*'

// Options controls how spans are replaced.
type Options struct {
	// Preserve lists entity types left verbatim.
	Preserve map[types.EntityType]bool
	// Descriptive replaces spans with "<MASKED_{TYPE}>" instead of a run of
	// MaskChar.
	Descriptive bool
	// MaskChar fills asterisk-mode masks; zero means DefaultMaskChar.
	MaskChar rune
}

// MaskFor returns the replacement for span s.
func (o Options) MaskFor(s types.Span) string {
	if o.Descriptive {
		return "<MASKED_" + string(s.Type) + ">"
	}
	c := o.MaskChar
	if c == 0 {
		c = DefaultMaskChar
	}
	return strings.Repeat(string(c), s.Len())
}

// Mask replaces every span in set whose type is not preserved. Replacements
// are spliced from the last span to the first so earlier offsets stay valid.
// The returned entities are in ascending start order.
func Mask(src string, set merge.Set, opts Options) (string, []types.MaskedEntity) {
	if set.Len() == 0 {
		return src, []types.MaskedEntity{}
	}
	out := []rune(src)
	var entities []types.MaskedEntity
	for i := set.Len() - 1; i >= 0; i-- {
		s := set.At(i)
		if opts.Preserve[s.Type] {
			continue
		}
		mask := opts.MaskFor(s)
		tail := append([]rune(mask), out[s.End:]...)
		out = append(out[:s.Start], tail...)
		entities = append(entities, types.MaskedEntity{
			Original:   s.Text,
			Type:       s.Type,
			Mask:       mask,
			Method:     s.Method,
			Confidence: s.Confidence,
			Start:      s.Start,
			End:        s.End,
		})
	}
	// collected back to front; report front to back
	for l, r := 0, len(entities)-1; l < r; l, r = l+1, r-1 {
		entities[l], entities[r] = entities[r], entities[l]
	}
	if entities == nil {
		entities = []types.MaskedEntity{}
	}
	return string(out), entities
}
