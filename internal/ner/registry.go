package ner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/redactyl/gdprmask/internal/types"
)

// Registry lazily builds and caches one model handle per language. The
// mutexes only guard initialization; once a handle is published it is read
// through an atomic pointer.
type Registry struct {
	loader    Loader
	serialize bool

	mu      sync.Mutex
	entries map[types.Language]*entry
}

type entry struct {
	mu    sync.Mutex
	model atomic.Pointer[holder]
}

type holder struct{ m Model }

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSerializedInference wraps every loaded model so that at most one Infer
// call runs at a time per language. Use it for backends that are not safe for
// concurrent inference.
func WithSerializedInference() RegistryOption {
	return func(r *Registry) { r.serialize = true }
}

// NewRegistry returns a Registry backed by loader.
func NewRegistry(loader Loader, opts ...RegistryOption) *Registry {
	r := &Registry{loader: loader, entries: make(map[types.Language]*entry)}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get returns the model for lang, loading it on first use. A failed load is
// not cached, so the next call retries.
func (r *Registry) Get(ctx context.Context, lang types.Language) (Model, error) {
	r.mu.Lock()
	e, ok := r.entries[lang]
	if !ok {
		e = &entry{}
		r.entries[lang] = e
	}
	r.mu.Unlock()

	if h := e.model.Load(); h != nil {
		return h.m, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if h := e.model.Load(); h != nil {
		return h.m, nil
	}
	m, err := r.loader(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("load ner model for %s: %w", lang, err)
	}
	if r.serialize {
		m = &serialModel{m: m}
	}
	e.model.Store(&holder{m: m})
	log.Debug().Str("language", string(lang)).Bool("serialized", r.serialize).Msg("ner model loaded")
	return m, nil
}

// Loaded lists the languages whose model has been built, sorted.
func (r *Registry) Loaded() []types.Language {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.Language
	for lang, e := range r.entries {
		if e.model.Load() != nil {
			out = append(out, lang)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type serialModel struct {
	mu sync.Mutex
	m  Model
}

func (s *serialModel) Infer(ctx context.Context, text string) ([]Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Infer(ctx, text)
}
