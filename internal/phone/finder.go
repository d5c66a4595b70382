// Package phone finds telephone numbers in free text and keeps only those
// that libphonenumber (github.com/nyaruka/phonenumbers) accepts as valid for
// some region.
package phone

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

// Match is one validated number. Start and End are rune offsets.
type Match struct {
	Start         int
	End           int
	Raw           string
	E164          string
	International string
	Region        string
}

// Finder locates valid phone numbers in text. defaultRegion is an ISO 3166
// alpha-2 code used to interpret numbers written without a country prefix.
type Finder interface {
	FindNumbers(text, defaultRegion string) []Match
}

// DefaultExtraRegions are tried after the caller's region for numbers that
// carry no international prefix.
var DefaultExtraRegions = []string{"SI", "HR", "RS", "BG", "MK", "US", "GB", "DE", "FR"}

// candidate: optional "(" / "+" / "00", then at least 6 digits joined by at
// most two separator characters. Dots are excluded so dates never qualify.
// A candidate may hold several numbers or trailing groups such as a postcode;
// scan splits it.
var reCandidate = regexp.MustCompile(`\(?(?:\+|00)?\d(?:[ \t\-/()]{0,2}\d){5,}`)

const (
	minDigits = 6
	maxDigits = 17
)

// LibFinder is the Finder backed by libphonenumber.
type LibFinder struct {
	regions []string
}

// NewLibFinder returns a finder that tries the default region first and then
// each of extraRegions. With no extras, DefaultExtraRegions apply.
func NewLibFinder(extraRegions ...string) *LibFinder {
	if len(extraRegions) == 0 {
		extraRegions = DefaultExtraRegions
	}
	rs := make([]string, len(extraRegions))
	copy(rs, extraRegions)
	return &LibFinder{regions: rs}
}

// Regions returns the fallback regions in the order they are tried.
func (f *LibFinder) Regions() []string {
	out := make([]string, len(f.regions))
	copy(out, f.regions)
	return out
}

// FindNumbers returns validated numbers in ascending start order, at most one
// per text range.
func (f *LibFinder) FindNumbers(text, defaultRegion string) []Match {
	locs := reCandidate.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	regions := f.regionOrder(defaultRegion)
	var out []Match
	seen := make(map[[2]int]bool)
	for _, loc := range locs {
		start, end := trimCandidate(text, loc[0], loc[1])
		if start >= end || !bounded(text, start, end) {
			continue
		}
		for _, m := range scan(text[start:end], regions) {
			bs, be := start+m.Start, start+m.End
			m.Start = utf8.RuneCountInString(text[:bs])
			m.End = m.Start + utf8.RuneCountInString(text[bs:be])
			key := [2]int{m.Start, m.End}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}
	return out
}

// scan validates raw as a whole and otherwise looks for numbers among its
// whitespace-separated groups. Left to right, each start group is extended as
// far as possible. Inner matches are only tried in the default region, so a
// run of unrelated digits cannot pass as a number from a fallback region.
// Start and End of the returned matches are byte offsets into raw.
func scan(raw string, regions []string) []Match {
	if m, ok := validateRange(raw, 0, len(raw), regions); ok {
		return []Match{m}
	}
	groups := splitGroups(raw)
	if len(groups) < 2 || len(regions) == 0 {
		return nil
	}
	inner := regions[:1]
	var out []Match
	for i := 0; i < len(groups); {
		limit, digits := i, 0
		for limit < len(groups) {
			digits += countDigits(raw[groups[limit][0]:groups[limit][1]])
			if digits > maxDigits {
				break
			}
			limit++
		}
		next := i + 1
		for j := limit; j > i; j-- {
			if i == 0 && j == len(groups) {
				continue
			}
			s, e := trimCandidate(raw, groups[i][0], groups[j-1][1])
			if m, ok := validateRange(raw, s, e, inner); ok {
				out = append(out, m)
				next = j
				break
			}
		}
		i = next
	}
	return out
}

func validateRange(raw string, start, end int, regions []string) (Match, bool) {
	if start >= end {
		return Match{}, false
	}
	if n := countDigits(raw[start:end]); n < minDigits || n > maxDigits {
		return Match{}, false
	}
	m, ok := validate(raw[start:end], regions)
	if !ok {
		return Match{}, false
	}
	m.Start, m.End = start, end
	return m, true
}

// splitGroups returns the byte ranges of the space or tab separated tokens.
func splitGroups(raw string) [][2]int {
	var out [][2]int
	start := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == ' ' || raw[i] == '\t' {
			if start >= 0 {
				out = append(out, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, len(raw)})
	}
	return out
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			n++
		}
	}
	return n
}

func (f *LibFinder) regionOrder(def string) []string {
	out := make([]string, 0, len(f.regions)+1)
	if def != "" {
		out = append(out, def)
	}
	for _, r := range f.regions {
		if r != def {
			out = append(out, r)
		}
	}
	return out
}

func validate(raw string, regions []string) (Match, bool) {
	for _, region := range regions {
		num, err := phonenumbers.Parse(raw, region)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			continue
		}
		return Match{
			Raw:           raw,
			E164:          phonenumbers.Format(num, phonenumbers.E164),
			International: phonenumbers.Format(num, phonenumbers.INTERNATIONAL),
			Region:        phonenumbers.GetRegionCodeForNumber(num),
		}, true
	}
	return Match{}, false
}

// trimCandidate drops leading separators, an unbalanced leading "(" and any
// trailing separators.
func trimCandidate(text string, start, end int) (int, int) {
	for start < end && !isDigit(text[start]) && text[start] != '+' && text[start] != '(' {
		start++
	}
	if start >= end {
		return start, end
	}
	if text[start] == '(' {
		open := 0
		for i := start; i < end; i++ {
			switch text[i] {
			case '(':
				open++
			case ')':
				open--
			}
		}
		if open > 0 {
			start++
		}
	}
	for end > start && !isDigit(text[end-1]) {
		end--
	}
	return start, end
}

// bounded rejects candidates glued to letters or digits, e.g. inside an IBAN.
func bounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
