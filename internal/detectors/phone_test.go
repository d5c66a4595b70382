package detectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/gdprmask/internal/phone"
	"github.com/redactyl/gdprmask/internal/types"
)

type fakeFinder struct {
	gotRegion string
	matches   []phone.Match
}

func (f *fakeFinder) FindNumbers(text, region string) []phone.Match {
	f.gotRegion = region
	return f.matches
}

func TestPhone_RegionFromLanguage(t *testing.T) {
	for lang, want := range map[types.Language]string{
		types.Slovenian: "SI", types.Croatian: "HR", types.Serbian: "RS", types.Bulgarian: "BG", types.Macedonian: "MK",
	} {
		f := &fakeFinder{}
		_, err := NewPhone(f).Detect(context.Background(), "x", lang)
		require.NoError(t, err)
		assert.Equal(t, want, f.gotRegion)
	}
}

func TestPhone_Spans(t *testing.T) {
	text := "tel: 031 123 456"
	f := &fakeFinder{matches: []phone.Match{{Start: 5, End: 16, E164: "+38631123456", Region: "SI"}}}
	spans, err := NewPhone(f).Detect(context.Background(), text, types.Slovenian)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, types.Span{Start: 5, End: 16, Text: "031 123 456", Type: types.Phone, Confidence: types.ConfHigh, Method: types.MethodPhone}, spans[0])
}
