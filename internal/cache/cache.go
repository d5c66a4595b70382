// Package cache remembers which batch inputs were already anonymized with the
// current settings so unchanged files can be skipped.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/redactyl/gdprmask/internal/types"
)

// FileName is the cache file written next to batch outputs.
const FileName = ".gdprmaskcache.json"

type DB struct {
	// Path relative to the batch root -> content key (see Key)
	Entries map[string]string `json:"entries"`
	// Path -> entities masked by the run that produced the entry
	Findings map[string][]Finding `json:"findings,omitempty"`
}

// Finding locates one masked entity without its value. Offsets are runes;
// lines and columns are 1-based and refer to the unmasked input.
type Finding struct {
	Type       types.EntityType `json:"type"`
	Method     types.Method     `json:"method"`
	Confidence types.Confidence `json:"confidence"`
	Start      int              `json:"start"`
	End        int              `json:"end"`
	StartLine  int              `json:"start_line"`
	StartCol   int              `json:"start_col"`
	EndLine    int              `json:"end_line"`
	EndCol     int              `json:"end_col"`
}

func empty() DB {
	return DB{Entries: map[string]string{}, Findings: map[string][]Finding{}}
}

// Lookup returns the findings recorded for path when its entry still equals
// key. Entries written without findings never match.
func (db DB) Lookup(path, key string) ([]Finding, bool) {
	if db.Entries[path] != key {
		return nil, false
	}
	fs, ok := db.Findings[path]
	return fs, ok
}

// Put records key and the findings of the run that produced it.
func (db *DB) Put(path, key string, fs []Finding) {
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	if db.Findings == nil {
		db.Findings = map[string][]Finding{}
	}
	if fs == nil {
		fs = []Finding{}
	}
	db.Entries[path] = key
	db.Findings[path] = fs
}

// FindingsOf strips entities down to their locations in src, the text their
// offsets refer to.
func FindingsOf(src string, entities []types.MaskedEntity) []Finding {
	rs := []rune(src)
	out := make([]Finding, 0, len(entities))
	for _, me := range entities {
		sl, sc := LineCol(rs, me.Start)
		el, ec := LineCol(rs, me.End)
		out = append(out, Finding{
			Type: me.Type, Method: me.Method, Confidence: me.Confidence,
			Start: me.Start, End: me.End,
			StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec,
		})
	}
	return out
}

// LineCol converts a rune offset into a 1-based line and column.
func LineCol(src []rune, off int) (int, int) {
	line, col := 1, 1
	for i := 0; i < off && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func defaultPath(dir string) string {
	// Prefer storing cache under .git to avoid accidental commits
	gitDir := filepath.Join(dir, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "gdprmaskcache.json")
	}
	return filepath.Join(dir, FileName)
}

func Load(dir string) (DB, error) {
	var db DB
	p := defaultPath(dir)
	f, err := os.ReadFile(p)
	if err != nil {
		return empty(), err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return empty(), err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	if db.Findings == nil {
		db.Findings = map[string][]Finding{}
	}
	return db, nil
}

func Save(dir string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	p := defaultPath(dir)
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(p, b, 0644)
}

// Hash returns the xxhash64 of b as 16 lowercase hex characters.
func Hash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// Key combines the content hash with a fingerprint of the settings that
// produced the output, so a settings change invalidates the entry.
func Key(content []byte, settings string) string {
	return Hash(content) + ":" + Hash([]byte(settings))
}
