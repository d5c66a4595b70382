// Package files holds small helpers for files gdprmask leaves in a
// project tree.
package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redactyl/gdprmask/internal/audit"
	"github.com/redactyl/gdprmask/internal/cache"
)

// StateIgnores returns the patterns for files gdprmask writes next to the
// inputs: the batch cache and the audit log.
func StateIgnores() []string {
	return []string{cache.FileName, audit.FileName}
}

// EnsureIgnored appends each pattern missing from root/.gitignore and
// returns the ones it added. The file is created when missing.
func EnsureIgnored(root string, patterns ...string) ([]string, error) {
	path := filepath.Join(root, ".gitignore")
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			existing[strings.TrimSpace(sc.Text())] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var added []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || existing[p] {
			continue
		}
		existing[p] = true
		added = append(added, p)
	}
	if len(added) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()
	var sb strings.Builder
	if !endsWithNewline {
		sb.WriteByte('\n')
	}
	for _, p := range added {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		return nil, fmt.Errorf("write .gitignore: %w", err)
	}
	return added, nil
}
