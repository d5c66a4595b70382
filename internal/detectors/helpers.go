package detectors

import (
	"unicode/utf8"

	"github.com/redactyl/gdprmask/internal/types"
)

// runeIndex maps byte offsets of s to rune offsets. Index len(s) holds the
// rune count.
func runeIndex(s string) []int {
	idx := make([]int, len(s)+1)
	n := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		for k := 0; k < size; k++ {
			idx[i+k] = n
		}
		i += size
		n++
	}
	idx[len(s)] = n
	return idx
}

// findAll runs every rule over text and emits one span per accepted match.
// Matches go through the rule's validator first; a validator may shorten the
// match from the right or reject it.
func findAll(text string, idx []int, rules []Rule, method types.Method) []types.Span {
	var out []types.Span
	for _, r := range rules {
		for _, loc := range r.Re.FindAllStringIndex(text, -1) {
			m, ok := validateMatch(r.ID, text[loc[0]:loc[1]])
			if !ok || m == "" {
				continue
			}
			start, end := loc[0], loc[0]+len(m)
			out = append(out, types.Span{
				Start:      idx[start],
				End:        idx[end],
				Text:       m,
				Type:       r.Type,
				Confidence: r.Confidence,
				Method:     method,
			})
		}
	}
	return dedupe(out)
}
