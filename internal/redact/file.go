package redact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Transform rewrites the full contents of a text file.
type Transform func(content string) (string, error)

// WouldChange reports whether fn would change the file at path.
func WouldChange(path string, fn Transform) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out, err := fn(string(b))
	if err != nil {
		return false, err
	}
	return out != string(b), nil
}

// RewriteFile runs fn over the file at path and replaces it atomically when
// the result differs. It reports whether the file changed. The file mode is
// kept.
func RewriteFile(path string, fn Transform) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out, err := fn(string(b))
	if err != nil {
		return false, err
	}
	if out == string(b) {
		return false, nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return false, fmt.Errorf("rewrite %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.WriteString(out); err != nil {
		_ = tmp.Close()
		return false, fmt.Errorf("rewrite %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("rewrite %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, fi.Mode().Perm()); err != nil {
		return false, fmt.Errorf("rewrite %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, fmt.Errorf("rewrite %s: %w", path, err)
	}
	return true, nil
}
