package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibFinder_International(t *testing.T) {
	f := NewLibFinder()
	text := "Dr. Ana Horvat (ana.horvat@gmail.com) iz Ljubljane, tel: +386 1 234 5678"
	got := f.FindNumbers(text, "SI")
	require.Len(t, got, 1)
	rs := []rune(text)
	assert.Equal(t, "+386 1 234 5678", string(rs[got[0].Start:got[0].End]))
	assert.Equal(t, "+38612345678", got[0].E164)
	assert.Equal(t, "SI", got[0].Region)
}

func TestLibFinder_NationalFormatUsesDefaultRegion(t *testing.T) {
	f := NewLibFinder("SI")
	got := f.FindNumbers("Pokličite 031 123 456 po 17. uri.", "SI")
	require.Len(t, got, 1)
	assert.Equal(t, "031 123 456", got[0].Raw)
	assert.Equal(t, "+38631123456", got[0].E164)
	// rune offsets: "Pokličite " is ten characters although "č" takes two bytes
	assert.Equal(t, 10, got[0].Start)
	assert.Equal(t, 21, got[0].End)
}

func TestLibFinder_RejectsNonNumbers(t *testing.T) {
	f := NewLibFinder()
	assert.Empty(t, f.FindNumbers("Rojen 12.05.1990, šifra 123.", "SI"))
	assert.Empty(t, f.FindNumbers("IBAN SI56192001234567892", "SI"))
	assert.Empty(t, f.FindNumbers("", "SI"))
}

func TestNewLibFinder_Regions(t *testing.T) {
	assert.Equal(t, DefaultExtraRegions, NewLibFinder().Regions())
	f := NewLibFinder("HR", "SI")
	assert.Equal(t, []string{"HR", "SI"}, f.Regions())
	assert.Equal(t, []string{"SI", "HR"}, f.regionOrder("SI"))
	assert.Equal(t, []string{"RS", "HR", "SI"}, f.regionOrder("RS"))
}

func TestTrimCandidate(t *testing.T) {
	s, e := trimCandidate("(031 123 456", 0, 12)
	assert.Equal(t, 1, s)
	assert.Equal(t, 12, e)

	s, e = trimCandidate("(01) 234 5678", 0, 13)
	assert.Equal(t, 0, s)
	assert.Equal(t, 13, e)

	s, e = trimCandidate("031 123 456-", 0, 12)
	assert.Equal(t, 0, s)
	assert.Equal(t, 11, e)
}

func TestBounded(t *testing.T) {
	assert.True(t, bounded("tel 031123456.", 4, 13))
	assert.False(t, bounded("x031123456", 1, 10))
	assert.False(t, bounded("031123456č", 0, 9))
}

func TestLibFinder_NumberAmongOtherDigitGroups(t *testing.T) {
	f := NewLibFinder()
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"postcode after number", "tel: 041 123 456 1000 Ljubljana", []string{"041 123 456"}},
		{"year after international number", "tel: +386 1 234 5678 2024", []string{"+386 1 234 5678"}},
		{"two numbers in a row", "klic 041 123 456 041 654 321", []string{"041 123 456", "041 654 321"}},
		{"zero group before number", "šifra 0000 041 123 456", []string{"041 123 456"}},
		{"no number inside", "šifra 000 000 000 000", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.FindNumbers(tc.text, "SI")
			rs := []rune(tc.text)
			var raws []string
			for _, m := range got {
				assert.Equal(t, m.Raw, string(rs[m.Start:m.End]))
				raws = append(raws, m.Raw)
			}
			assert.Equal(t, tc.want, raws)
		})
	}
}

func TestSplitGroups(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 3}, {4, 7}, {9, 12}}, splitGroups("041 123  456"))
	assert.Nil(t, splitGroups(""))
}

func TestTrimCandidate_LeadingSeparator(t *testing.T) {
	s, e := trimCandidate("-041 123", 0, 8)
	assert.Equal(t, 1, s)
	assert.Equal(t, 8, e)
}
