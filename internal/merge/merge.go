// Package merge resolves the union of detector spans into one ordered,
// non-overlapping set.
package merge

import (
	"sort"

	"github.com/redactyl/gdprmask/internal/types"
)

// Set is an immutable, ascending, non-overlapping sequence of spans. The zero
// value is an empty set. Only Merge builds non-empty sets.
type Set struct {
	spans []types.Span
}

// Len returns the number of spans.
func (s Set) Len() int { return len(s.spans) }

// At returns the i-th span.
func (s Set) At(i int) types.Span { return s.spans[i] }

// Spans returns a copy of the spans in ascending start order.
func (s Set) Spans() []types.Span {
	out := make([]types.Span, len(s.spans))
	copy(out, s.spans)
	return out
}

// Merge validates spans against src, orders them and sweeps left to right,
// keeping a span only when it starts at or after the end of the last kept
// span. Structurally invalid spans are returned separately. The result does
// not depend on the order of the input.
func Merge(src []rune, spans []types.Span) (Set, []types.Span) {
	var valid, invalid []types.Span
	for _, s := range spans {
		if Valid(src, s) {
			valid = append(valid, s)
		} else {
			invalid = append(invalid, s)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool { return less(valid[i], valid[j]) })

	kept := make([]types.Span, 0, len(valid))
	lastEnd := 0
	for _, s := range valid {
		if len(kept) > 0 && s.Start < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.End
	}
	return Set{spans: kept}, invalid
}

// Valid reports whether s lies inside src and its text matches the covered
// characters.
func Valid(src []rune, s types.Span) bool {
	if s.Start < 0 || s.Start >= s.End || s.End > len(src) {
		return false
	}
	return string(src[s.Start:s.End]) == s.Text
}

// less orders by start, longer first, method priority, confidence, then type
// and text so identical ranges always resolve the same way.
func less(a, b types.Span) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.Len() != b.Len() {
		return a.Len() > b.Len()
	}
	if pa, pb := a.Method.Priority(), b.Method.Priority(); pa != pb {
		return pa > pb
	}
	if ca, cb := a.Confidence.Rank(), b.Confidence.Rank(); ca != cb {
		return ca > cb
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.Text < b.Text
}
