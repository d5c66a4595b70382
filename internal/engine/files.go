package engine

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/redactyl/gdprmask/internal/cache"
	"github.com/redactyl/gdprmask/internal/redact"
	"github.com/redactyl/gdprmask/internal/types"
)

// DefaultMaxBytes skips files larger than 1 MiB.
const DefaultMaxBytes int64 = 1 << 20

// FilesConfig controls which files a batch run reads and where the masked
// copies go.
type FilesConfig struct {
	Root string
	// Patterns are doublestar globs relative to Root; empty selects every file.
	Patterns []string
	// ExcludeGlobs is a comma-separated list subtracted from the selection.
	ExcludeGlobs    string
	MaxBytes        int64
	DefaultExcludes bool
	// OutDir receives masked copies at the same relative path. Empty
	// rewrites inputs in place.
	OutDir   string
	NoCache  bool
	DryRun   bool
	Progress func()
}

// FileOutcome is the result for one file of a batch run. For a cached file
// Result is rebuilt from the stored findings and carries no text.
type FileOutcome struct {
	Path     string
	Output   string
	Result   types.Result
	Findings []cache.Finding
	Cached   bool
	Changed  bool
	Err      error
}

// FilesResult summarizes a batch run over files.
type FilesResult struct {
	Files        []FileOutcome
	FilesScanned int
	FilesCached  int
	FilesFailed  int
}

type pendingFile struct {
	rel      string
	data     []byte
	cacheVal string
}

func determineBatchSize(threads int) int {
	if threads < 2 {
		threads = 2
	}
	return threads * 4
}

// Walk traverses cfg.Root and invokes handle for each eligible text file.
func Walk(ctx context.Context, cfg FilesConfig, handle func(rel string, data []byte)) error {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	outAbs := absOrEmpty(cfg.OutDir)
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != cfg.Root && cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			// never re-read our own output
			if outAbs != "" && p != cfg.Root && absOrEmpty(p) == outAbs {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		rel = filepath.ToSlash(rel)
		if isStateFile(rel) || !allowedByGlobs(rel, cfg) {
			return nil
		}
		info, _ := d.Info()
		if info != nil && info.Size() > maxBytes {
			return nil
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		if looksBinary(b) || looksNonTextMIME(rel, b) {
			return nil
		}
		handle(rel, b)
		return nil
	})
}

// CountTargets returns how many files a batch run over cfg would read.
func CountTargets(ctx context.Context, cfg FilesConfig) (int, error) {
	n := 0
	err := Walk(ctx, cfg, func(string, []byte) { n++ })
	return n, err
}

// AnonymizeFiles anonymizes every file selected by cfg and writes the masked
// text to cfg.OutDir (or in place). Files whose content and settings match the
// cache are skipped. Per-file errors are reported in the outcome; the returned
// error covers walking and cancellation.
func (e *Engine) AnonymizeFiles(ctx context.Context, cfg FilesConfig, req Request) (FilesResult, error) {
	ctx, span := tracer.Start(ctx, "engine.files", trace.WithAttributes(
		attribute.String("root", cfg.Root),
	))
	defer span.End()

	var res FilesResult
	cacheDir := cfg.OutDir
	if cacheDir == "" {
		cacheDir = cfg.Root
	}
	db := cache.DB{Entries: map[string]string{}}
	if !cfg.NoCache {
		db, _ = cache.Load(cacheDir)
	}
	settings := fingerprint(req)

	var pending []pendingFile
	err := Walk(ctx, cfg, func(rel string, data []byte) {
		val := cache.Key(data, settings)
		if !cfg.NoCache && outputExists(cfg, rel) {
			if fs, ok := db.Lookup(rel, val); ok {
				res.FilesCached++
				res.Files = append(res.Files, FileOutcome{
					Path:     rel,
					Output:   outputPath(cfg, rel),
					Result:   cachedResult(req, fs),
					Findings: fs,
					Cached:   true,
				})
				return
			}
		}
		pending = append(pending, pendingFile{rel: rel, data: data, cacheVal: val})
	})
	if err != nil {
		return res, fmt.Errorf("walk %s: %w", cfg.Root, err)
	}

	chunk := determineBatchSize(e.workers())
	for start := 0; start < len(pending); start += chunk {
		end := min(start+chunk, len(pending))
		outcomes := e.processChunk(ctx, cfg, req, pending[start:end])
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for i, o := range outcomes {
			res.FilesScanned++
			if cfg.Progress != nil {
				cfg.Progress()
			}
			if o.Err != nil {
				res.FilesFailed++
				log.Warn().Str("path", o.Path).Err(o.Err).Msg("file not anonymized")
			} else if !cfg.DryRun {
				val := pending[start+i].cacheVal
				if cfg.OutDir == "" && o.Changed {
					// in place: the file now holds the masked text
					val = cache.Key([]byte(o.Result.AnonymizedText), settings)
				}
				db.Put(o.Path, val, o.Findings)
			}
			res.Files = append(res.Files, o)
		}
	}
	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })

	if !cfg.NoCache && !cfg.DryRun && res.FilesScanned > 0 {
		if err := cache.Save(cacheDir, db); err != nil {
			log.Warn().Err(err).Msg("cache not saved")
		}
	}
	span.SetAttributes(
		attribute.Int("scanned", res.FilesScanned),
		attribute.Int("cached", res.FilesCached),
		attribute.Int("failed", res.FilesFailed),
	)
	return res, nil
}

func (e *Engine) processChunk(ctx context.Context, cfg FilesConfig, req Request, chunk []pendingFile) []FileOutcome {
	out := make([]FileOutcome, len(chunk))
	var g errgroup.Group
	g.SetLimit(e.workers())
	for i, job := range chunk {
		g.Go(func() error {
			out[i] = e.processFile(ctx, cfg, req, job)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Engine) processFile(ctx context.Context, cfg FilesConfig, req Request, job pendingFile) FileOutcome {
	o := FileOutcome{Path: job.rel, Output: outputPath(cfg, job.rel)}
	transform := func(content string) (string, error) {
		r, err := e.Anonymize(ctx, content, req)
		if err != nil {
			return "", err
		}
		o.Result = r
		o.Findings = cache.FindingsOf(content, r.MaskedEntities)
		return r.AnonymizedText, nil
	}

	if cfg.OutDir == "" {
		src := filepath.Join(cfg.Root, filepath.FromSlash(job.rel))
		if cfg.DryRun {
			o.Changed, o.Err = redact.WouldChange(src, transform)
		} else {
			o.Changed, o.Err = redact.RewriteFile(src, transform)
		}
		return o
	}

	masked, err := transform(string(job.data))
	if err != nil {
		o.Err = err
		return o
	}
	o.Changed = masked != string(job.data)
	if cfg.DryRun {
		return o
	}
	if err := os.MkdirAll(filepath.Dir(o.Output), 0o755); err != nil {
		o.Err = fmt.Errorf("create output dir: %w", err)
		return o
	}
	if err := os.WriteFile(o.Output, []byte(masked), 0o644); err != nil {
		o.Err = fmt.Errorf("write %s: %w", o.Output, err)
	}
	return o
}

func outputPath(cfg FilesConfig, rel string) string {
	if cfg.OutDir == "" {
		return filepath.Join(cfg.Root, filepath.FromSlash(rel))
	}
	return filepath.Join(cfg.OutDir, filepath.FromSlash(rel))
}

func outputExists(cfg FilesConfig, rel string) bool {
	_, err := os.Stat(outputPath(cfg, rel))
	return err == nil
}

// cachedResult rebuilds the text-free part of a result from stored findings.
func cachedResult(req Request, fs []cache.Finding) types.Result {
	lang := req.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	entities := make([]types.MaskedEntity, 0, len(fs))
	for _, f := range fs {
		entities = append(entities, types.MaskedEntity{
			Type: f.Type, Method: f.Method, Confidence: f.Confidence, Start: f.Start, End: f.End,
		})
	}
	return assemble(lang, "", "", entities)
}

// fingerprint renders the settings that change the masked output.
func fingerprint(req Request) string {
	lang := req.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	preserve := append([]string(nil), req.PreserveTypes...)
	sort.Strings(preserve)
	return fmt.Sprintf("%s|%t|%q|%s", lang, req.Descriptive, req.MaskChar, strings.Join(preserve, ","))
}

func absOrEmpty(p string) string {
	if p == "" {
		return ""
	}
	a, err := filepath.Abs(p)
	if err != nil {
		return ""
	}
	return a
}

// allowedByGlobs reports whether relPath is selected by the batch patterns
// and not removed by the exclude list.
func allowedByGlobs(relPath string, cfg FilesConfig) bool {
	if len(cfg.Patterns) > 0 {
		var includes []string
		for _, p := range cfg.Patterns {
			includes = append(includes, p, trimGlobPrefix(p))
		}
		if !matchAnyGlob(relPath, includes) {
			return false
		}
	}
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(excludes) > 0 && matchAnyGlob(relPath, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

func looksBinary(b []byte) bool {
	n := min(len(b), 800)
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}

// looksNonTextMIME uses the file extension and a tiny content sniff to skip
// clearly non-text content in addition to NUL-byte detection.
func looksNonTextMIME(path string, b []byte) bool {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
			return true
		}
		if strings.Contains(ct, "zip") || strings.Contains(ct, "tar") || strings.Contains(ct, "gzip") {
			return true
		}
	}
	if len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K'
}
