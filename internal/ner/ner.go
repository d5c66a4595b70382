// Package ner provides the named-entity recognition collaborator used by the
// NER detector: the Model contract, a per-language Registry that builds one
// model handle per language on first use, an embedded gazetteer model for
// offline runs, and a JSON-over-HTTP client for an external tagger.
package ner

import (
	"context"
	"errors"
	"strings"

	"github.com/redactyl/gdprmask/internal/types"
)

// Entity is one tagged token. Start and End are rune offsets into the text
// passed to Infer. Label is the tagger's native label (e.g. "B-PER").
type Entity struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Model tags named entities in text.
type Model interface {
	Infer(ctx context.Context, text string) ([]Entity, error)
}

// Loader builds the model for one language. It is called at most once per
// language by a Registry unless it fails.
type Loader func(ctx context.Context, lang types.Language) (Model, error)

// ErrUnsupportedLanguage is returned by loaders that have no model for the
// requested language.
var ErrUnsupportedLanguage = errors.New("ner: unsupported language")

// BaseLabel strips a BIO prefix ("B-", "I-") from a native label.
func BaseLabel(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
