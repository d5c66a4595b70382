package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/gdprmask/internal/types"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	// initial load should return empty DB and error
	db, _ := Load(dir)
	if db.Entries == nil {
		t.Fatalf("expected entries map initialized")
	}
	db.Entries["a.txt"] = "deadbeef"
	if err := Save(dir, db); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	db2, err := Load(dir)
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	if got := db2.Entries["a.txt"]; got != "deadbeef" {
		t.Fatalf("unexpected entry: %q", got)
	}
}

func TestSave_PrefersGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, Save(dir, DB{Entries: map[string]string{"x": "y"}}))
	_, err := os.Stat(filepath.Join(dir, ".git", "gdprmaskcache.json"))
	assert.NoError(t, err)
}

func TestSave_NilEntries(t *testing.T) {
	assert.Error(t, Save(t.TempDir(), DB{}))
}

func TestHashAndKey(t *testing.T) {
	assert.Equal(t, "0000000000000000", Hash(nil))
	h := Hash([]byte("Ana Horvat"))
	assert.Len(t, h, 16)
	assert.Equal(t, h, Hash([]byte("Ana Horvat")))
	assert.NotEqual(t, h, Hash([]byte("Ana Horvat.")))

	k1 := Key([]byte("text"), "sl|*")
	k2 := Key([]byte("text"), "sl|#")
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, Key([]byte("text"), "sl|*"))
}

func TestPutLookup(t *testing.T) {
	dir := t.TempDir()
	db, _ := Load(dir)
	fs := FindingsOf("tel 041 123 456", []types.MaskedEntity{
		{Original: "041 123 456", Type: types.Phone, Method: types.MethodPhone, Confidence: types.ConfHigh, Start: 4, End: 15},
	})
	db.Put("a.txt", "k1", fs)
	db.Put("empty.txt", "k2", nil)
	require.NoError(t, Save(dir, db))

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "041 123 456")

	db2, err := Load(dir)
	require.NoError(t, err)
	got, ok := db2.Lookup("a.txt", "k1")
	require.True(t, ok)
	assert.Equal(t, fs, got)

	got, ok = db2.Lookup("empty.txt", "k2")
	assert.True(t, ok)
	assert.Empty(t, got)

	_, ok = db2.Lookup("a.txt", "other")
	assert.False(t, ok)
}

func TestLookup_EntryWithoutFindings(t *testing.T) {
	db := DB{Entries: map[string]string{"a.txt": "k"}}
	_, ok := db.Lookup("a.txt", "k")
	assert.False(t, ok)
}

func TestFindingsOf(t *testing.T) {
	fs := FindingsOf("ab\nčd Ana\n", []types.MaskedEntity{
		{Original: "Ana", Type: types.PER, Method: types.MethodNER, Start: 6, End: 9},
	})
	require.Len(t, fs, 1)
	assert.Equal(t, Finding{
		Type: types.PER, Method: types.MethodNER,
		Start: 6, End: 9,
		StartLine: 2, StartCol: 4, EndLine: 2, EndCol: 7,
	}, fs[0])
}

func TestLineCol(t *testing.T) {
	src := []rune("ab\nčd\n")
	l, c := LineCol(src, 0)
	assert.Equal(t, [2]int{1, 1}, [2]int{l, c})
	l, c = LineCol(src, 4)
	assert.Equal(t, [2]int{2, 2}, [2]int{l, c})
}
