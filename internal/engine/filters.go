package engine

import (
	"path"
	"strings"
)

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"bin":          true,
	"obj":          true,
}

// suffixes that never hold prose worth anonymizing when default excludes are enabled
var defaultExcludeFileSuffixes = []string{
	".min.js", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
	".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so",
	".wasm", ".pyc",
}

// exact filenames commonly safe to exclude when default excludes enabled
var defaultExcludeFileNames = map[string]bool{
	"yarn.lock":         true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	".ds_store":         true,
}

// the tool's own state files, always skipped
var stateFileNames = map[string]bool{
	".gdprmaskcache.json":   true,
	".gdprmask_audit.jsonl": true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name] || strings.HasPrefix(name, ".git")
}

func isStateFile(rel string) bool {
	return stateFileNames[path.Base(rel)]
}

func isDefaultFileExcluded(lowerRel string) bool {
	if strings.HasSuffix(lowerRel, ".lock") {
		return true
	}
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	parts := strings.Split(lowerRel, "/")
	return defaultExcludeFileNames[parts[len(parts)-1]]
}
