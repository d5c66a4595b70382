package ner

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/redactyl/gdprmask/internal/types"
)

//go:embed lexicons/*.yaml
var lexiconFS embed.FS

// lexicon is the on-disk shape of lexicons/<lang>.yaml.
type lexicon struct {
	Language      string   `yaml:"language"`
	Titles        []string `yaml:"titles"`
	FirstNames    []string `yaml:"first_names"`
	Surnames      []string `yaml:"surnames"`
	Derivatives   []string `yaml:"person_derivatives"`
	Places        []string `yaml:"places"`
	Organizations []string `yaml:"organizations"`
}

// Gazetteer is a deterministic lexicon tagger. It marks known first names,
// surnames, places (including inflected forms) and organisations, plus the
// capitalised word after an honorific such as "dr." or "ga.". Labels follow
// the BIO scheme used by CLASSLA ("B-PER", "I-LOC", "B-DERIV-PER").
type Gazetteer struct {
	lang        types.Language
	titles      map[string]bool
	persons     map[string]bool
	derivatives map[string]bool
	phrases     map[string][]phrase // keyed by first token
}

type phrase struct {
	words []string
	label string
}

// NewGazetteer loads the embedded lexicon for lang.
func NewGazetteer(lang types.Language) (*Gazetteer, error) {
	data, err := lexiconFS.ReadFile("lexicons/" + string(lang) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	var lx lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", lang, err)
	}
	g := &Gazetteer{
		lang:        lang,
		titles:      make(map[string]bool, len(lx.Titles)),
		persons:     make(map[string]bool, len(lx.FirstNames)+len(lx.Surnames)),
		derivatives: make(map[string]bool, len(lx.Derivatives)),
		phrases:     make(map[string][]phrase),
	}
	for _, t := range lx.Titles {
		g.titles[strings.ToLower(strings.TrimSuffix(t, "."))] = true
	}
	for _, n := range lx.FirstNames {
		g.persons[n] = true
	}
	for _, n := range lx.Surnames {
		g.persons[n] = true
	}
	for _, n := range lx.Derivatives {
		g.derivatives[n] = true
	}
	g.addPhrases(lx.Organizations, "ORG")
	g.addPhrases(lx.Places, "LOC")
	for k := range g.phrases {
		ps := g.phrases[k]
		// longest first so "Novo mesto" wins over "Novo"
		sort.SliceStable(ps, func(i, j int) bool { return len(ps[i].words) > len(ps[j].words) })
	}
	return g, nil
}

// GazetteerLoader is a Loader that builds embedded gazetteer models.
func GazetteerLoader(_ context.Context, lang types.Language) (Model, error) {
	return NewGazetteer(lang)
}

// Languages lists the languages that ship an embedded lexicon.
func Languages() []types.Language {
	entries, err := lexiconFS.ReadDir("lexicons")
	if err != nil {
		return nil
	}
	var out []types.Language
	for _, e := range entries {
		out = append(out, types.Language(strings.TrimSuffix(e.Name(), ".yaml")))
	}
	return out
}

func (g *Gazetteer) addPhrases(list []string, label string) {
	for _, p := range list {
		var words []string
		for _, t := range tokenize(p) {
			words = append(words, t.text)
		}
		if len(words) == 0 {
			continue
		}
		g.phrases[words[0]] = append(g.phrases[words[0]], phrase{words: words, label: label})
	}
}

// Infer tags text. It never fails on valid input; ctx is checked once so a
// cancelled call returns promptly.
func (g *Gazetteer) Infer(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rs := []rune(text)
	toks := tokenizeRunes(rs)
	var out []Entity
	prevPER := -1 // index of the last token tagged as a person
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if n, label := g.matchPhrase(toks, i); n > 0 {
			for k := 0; k < n; k++ {
				prefix := "I-"
				if k == 0 {
					prefix = "B-"
				}
				out = append(out, Entity{Start: toks[i+k].start, End: toks[i+k].end, Label: prefix + label})
			}
			i += n - 1
			continue
		}
		if !capitalized(tok.text) {
			continue
		}
		switch {
		case g.derivatives[tok.text]:
			out = append(out, Entity{Start: tok.start, End: tok.end, Label: "B-DERIV-PER"})
		case g.persons[tok.text] || g.afterTitle(rs, toks, i):
			prefix := "B-"
			if prevPER == i-1 && onlySpace(rs, toks[i-1].end, tok.start) {
				prefix = "I-"
			}
			out = append(out, Entity{Start: tok.start, End: tok.end, Label: prefix + "PER"})
			prevPER = i
		}
	}
	return out, nil
}

func (g *Gazetteer) matchPhrase(toks []token, i int) (int, string) {
	for _, p := range g.phrases[toks[i].text] {
		if i+len(p.words) > len(toks) {
			continue
		}
		ok := true
		for k, w := range p.words {
			if toks[i+k].text != w {
				ok = false
				break
			}
		}
		if ok {
			return len(p.words), p.label
		}
	}
	return 0, ""
}

// afterTitle reports whether token i directly follows an honorific written
// with its abbreviation dot, e.g. "dr. Novak" or "д-р. Иванов".
func (g *Gazetteer) afterTitle(rs []rune, toks []token, i int) bool {
	if i == 0 {
		return false
	}
	prev := toks[i-1]
	start := prev.start
	for start > 0 && (rs[start-1] == '-' || unicode.IsLetter(rs[start-1])) {
		start--
	}
	if !g.titles[strings.ToLower(string(rs[start:prev.end]))] {
		return false
	}
	if prev.end >= len(rs) || rs[prev.end] != '.' {
		return false
	}
	return onlySpace(rs, prev.end+1, toks[i].start)
}

type token struct {
	text       string
	start, end int // rune offsets
}

// tokenize splits text into runs of letters and digits with rune offsets.
func tokenize(text string) []token { return tokenizeRunes([]rune(text)) }

func tokenizeRunes(rs []rune) []token {
	var out []token
	start := -1
	for i, r := range rs {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			out = append(out, token{text: string(rs[start:i]), start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, token{text: string(rs[start:]), start: start, end: len(rs)})
	}
	return out
}

func capitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func onlySpace(rs []rune, from, to int) bool {
	if from > to || to > len(rs) {
		return false
	}
	for _, r := range rs[from:to] {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
