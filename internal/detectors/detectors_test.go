package detectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/gdprmask/internal/ner"
	"github.com/redactyl/gdprmask/internal/phone"
	"github.com/redactyl/gdprmask/internal/types"
)

// TestRuleValidatorsKeysAreValid ensures every validator is mapped to a known rule ID.
func TestRuleValidatorsKeysAreValid(t *testing.T) {
	ids := map[string]bool{}
	for _, id := range IDs() {
		ids[id] = true
	}
	for k := range ruleValidators {
		if !ids[k] {
			t.Fatalf("validator key %q not found in detectors IDs()", k)
		}
	}
}

func TestRuleIDsAreUnique(t *testing.T) {
	for _, lang := range types.Languages() {
		seen := map[string]bool{}
		for _, r := range Rules(lang) {
			require.False(t, seen[r.ID], "duplicate rule %s for %s", r.ID, lang)
			seen[r.ID] = true
		}
	}
	assert.Nil(t, Rules("de"))
}

func TestRegionalRules(t *testing.T) {
	for _, lang := range types.Languages() {
		rs := RegionalRules(lang)
		require.NotEmpty(t, rs, lang)
		assert.Len(t, Rules(lang), len(PatternRules())+len(rs))
	}
	assert.Empty(t, RegionalRules("de"))
}

func TestNew_RegistrationOrder(t *testing.T) {
	reg := ner.NewRegistry(ner.GazetteerLoader)
	ds := New(reg, phone.NewLibFinder())
	var got []types.Method
	for _, d := range ds {
		got = append(got, d.Method())
	}
	assert.Equal(t, []types.Method{types.MethodNER, types.MethodPhone, types.MethodPattern, types.MethodRegional}, got)

	ds = New(nil, nil)
	require.Len(t, ds, 2)
	assert.Equal(t, types.MethodPattern, ds[0].Method())
}

func TestWithoutAndByMethod(t *testing.T) {
	ds := New(ner.NewRegistry(ner.GazetteerLoader), phone.NewLibFinder())
	ds = Without(ds, types.MethodNER, types.MethodRegional)
	require.Len(t, ds, 2)

	_, ok := ByMethod(ds, types.MethodNER)
	assert.False(t, ok)
	d, ok := ByMethod(ds, types.MethodPhone)
	require.True(t, ok)
	assert.Equal(t, types.MethodPhone, d.Method())
}

func TestRuneIndex(t *testing.T) {
	idx := runeIndex("aščb")
	// a=0, š=1 (2 bytes), č=2 (2 bytes), b=3
	assert.Equal(t, []int{0, 1, 1, 2, 2, 3, 4}, idx)
}

func TestDedupe(t *testing.T) {
	in := []types.Span{
		{Start: 0, End: 4, Type: types.CreditCard},
		{Start: 0, End: 4, Type: types.CreditCard},
		{Start: 0, End: 4, Type: types.IBAN},
	}
	assert.Len(t, dedupe(in), 2)
}

func TestUnsupportedLanguageIsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, d := range New(ner.NewRegistry(ner.GazetteerLoader), phone.NewLibFinder()) {
		spans, err := d.Detect(ctx, "Ana Horvat, ana@example.com", types.Language("de"))
		assert.NoError(t, err, d.Method())
		assert.Nil(t, spans, d.Method())
	}
}

// spansOf filters spans by type.
func spansOf(spans []types.Span, typ types.EntityType) []types.Span {
	var out []types.Span
	for _, s := range spans {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}
