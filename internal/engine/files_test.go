package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/gdprmask/internal/cache"
	"github.com/redactyl/gdprmask/internal/types"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func nameEngine() *Engine {
	return New(WithDetectors(wordDetector{method: types.MethodNER, typ: types.PER, words: []string{"Ana"}}))
}

func TestAnonymizeFiles_OutDirAndCache(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, root, "notes/a.txt", "Ana je prišla.")
	writeFile(t, root, "b.md", "nič osebnega")
	writeFile(t, root, "img.png", "\x89PNG\r\n\x1a\nAna")
	writeFile(t, root, "skip.log", "Ana")

	cfg := FilesConfig{Root: root, Patterns: []string{"**/*.txt", "*.md"}, OutDir: out}
	e := nameEngine()

	res, err := e.AnonymizeFiles(context.Background(), cfg, Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesScanned)
	assert.Equal(t, 0, res.FilesCached)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "b.md", res.Files[0].Path)
	assert.False(t, res.Files[0].Changed)
	assert.Equal(t, "notes/a.txt", res.Files[1].Path)
	assert.True(t, res.Files[1].Changed)
	assert.Equal(t, 1, res.Files[1].Result.TotalMasked)

	b, err := os.ReadFile(filepath.Join(out, "notes", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "*** je prišla.", string(b))
	// the input is untouched
	b, err = os.ReadFile(filepath.Join(root, "notes", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Ana je prišla.", string(b))

	res, err = e.AnonymizeFiles(context.Background(), cfg, Request{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesScanned)
	assert.Equal(t, 2, res.FilesCached)

	// new settings invalidate the cache
	res, err = e.AnonymizeFiles(context.Background(), cfg, Request{Descriptive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesScanned)
	b, err = os.ReadFile(filepath.Join(out, "notes", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "<MASKED_PER> je prišla.", string(b))
}

func TestAnonymizeFiles_CachedOutcomeKeepsFindings(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, root, "a.txt", "Zdravo\nAna in Ana")
	cfg := FilesConfig{Root: root, OutDir: out}
	e := nameEngine()

	first, err := e.AnonymizeFiles(context.Background(), cfg, Request{})
	require.NoError(t, err)
	require.Len(t, first.Files, 1)
	fresh := first.Files[0]
	require.Len(t, fresh.Findings, 2)
	assert.Equal(t, 2, fresh.Findings[0].StartLine)

	second, err := e.AnonymizeFiles(context.Background(), cfg, Request{})
	require.NoError(t, err)
	require.Equal(t, 1, second.FilesCached)
	cached := second.Files[0]
	assert.True(t, cached.Cached)
	assert.Equal(t, fresh.Findings, cached.Findings)
	assert.Equal(t, fresh.Result.TotalMasked, cached.Result.TotalMasked)
	assert.Equal(t, fresh.Result.PrivacyRisk, cached.Result.PrivacyRisk)
	assert.Equal(t, fresh.Result.DetectionMethods, cached.Result.DetectionMethods)
	assert.Equal(t, fresh.Result.ComplianceNotes, cached.Result.ComplianceNotes)
	assert.Empty(t, cached.Result.OriginalText)
	assert.Empty(t, cached.Result.AnonymizedText)
	for _, me := range cached.Result.MaskedEntities {
		assert.Empty(t, me.Original)
	}
}

func TestAnonymizeFiles_CacheWithoutFindingsIsReprocessed(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, root, "a.txt", "Ana")
	writeFile(t, out, "a.txt", "***")
	key := cache.Key([]byte("Ana"), fingerprint(Request{}))
	require.NoError(t, cache.Save(out, cache.DB{Entries: map[string]string{"a.txt": key}}))

	res, err := nameEngine().AnonymizeFiles(context.Background(), FilesConfig{Root: root, OutDir: out}, Request{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesCached)
	assert.Equal(t, 1, res.FilesScanned)
}

func TestAnonymizeFiles_InPlace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "Pozdrav, Ana!")

	e := nameEngine()
	cfg := FilesConfig{Root: root, DryRun: true}
	res, err := e.AnonymizeFiles(context.Background(), cfg, Request{})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].Changed)
	b, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	assert.Equal(t, "Pozdrav, Ana!", string(b))

	cfg.DryRun = false
	_, err = e.AnonymizeFiles(context.Background(), cfg, Request{})
	require.NoError(t, err)
	b, _ = os.ReadFile(filepath.Join(root, "a.txt"))
	assert.Equal(t, "Pozdrav, ***!", string(b))

	// the rewritten file is now cached and the cache file itself is never read
	res, err = e.AnonymizeFiles(context.Background(), cfg, Request{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesScanned)
	assert.Equal(t, 1, res.FilesCached)
}

func TestAnonymizeFiles_InvalidUTF8IsPerFile(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, root, "bad.txt", "Ana \xff")
	writeFile(t, root, "good.txt", "Ana")

	res, err := nameEngine().AnonymizeFiles(context.Background(), FilesConfig{Root: root, OutDir: out, NoCache: true}, Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesFailed)
	require.Len(t, res.Files, 2)
	assert.ErrorIs(t, res.Files[0].Err, ErrInvalidText)
	assert.NoError(t, res.Files[1].Err)
	_, err = os.Stat(filepath.Join(out, ".gdprmaskcache.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWalk_SkipsOutDirAndDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "x")
	writeFile(t, root, "masked/a.txt", "x")
	writeFile(t, root, "node_modules/pkg/readme.md", "x")
	writeFile(t, root, "yarn.lock", "x")

	cfg := FilesConfig{Root: root, OutDir: filepath.Join(root, "masked"), DefaultExcludes: true}
	var got []string
	require.NoError(t, Walk(context.Background(), cfg, func(rel string, _ []byte) { got = append(got, rel) }))
	assert.Equal(t, []string{"a.txt"}, got)

	n, err := CountTargets(context.Background(), FilesConfig{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestWalk_MaxBytesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.txt", "x")
	writeFile(t, root, "big.txt", "0123456789")
	writeFile(t, root, "docs/private.txt", "x")

	cfg := FilesConfig{Root: root, MaxBytes: 5, ExcludeGlobs: "docs/**"}
	var got []string
	require.NoError(t, Walk(context.Background(), cfg, func(rel string, _ []byte) { got = append(got, rel) }))
	assert.Equal(t, []string{"small.txt"}, got)
}

func TestAllowedByGlobs(t *testing.T) {
	cases := []struct {
		name string
		path string
		cfg  FilesConfig
		want bool
	}{
		{"no patterns", "a/b.txt", FilesConfig{}, true},
		{"doublestar", "a/b/c.txt", FilesConfig{Patterns: []string{"**/*.txt"}}, true},
		{"base name", "deep/dir/c.txt", FilesConfig{Patterns: []string{"*.txt"}}, true},
		{"no match", "a/b.md", FilesConfig{Patterns: []string{"**/*.txt"}}, false},
		{"excluded", "a/b.txt", FilesConfig{ExcludeGlobs: "a/**, c/**"}, false},
		{"dot prefix", "a/b.txt", FilesConfig{Patterns: []string{"./a/*.txt"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, allowedByGlobs(tc.path, tc.cfg))
		})
	}
}

func TestLooksBinary(t *testing.T) {
	assert.True(t, looksBinary([]byte("ab\x00cd")))
	assert.False(t, looksBinary([]byte("Ljubljana")))
	assert.True(t, looksNonTextMIME("x.bin", []byte("PK\x03\x04")))
	assert.True(t, looksNonTextMIME("photo.jpg", nil))
	assert.False(t, looksNonTextMIME("notes.txt", []byte("text")))
}

func TestFingerprint(t *testing.T) {
	a := fingerprint(Request{PreserveTypes: []string{"LOC", "PER"}})
	b := fingerprint(Request{Language: types.Slovenian, PreserveTypes: []string{"PER", "LOC"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, fingerprint(Request{MaskChar: '#'}))
}
