package gdprmask

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/files"
	"github.com/redactyl/gdprmask/internal/report"
	"github.com/redactyl/gdprmask/internal/types"
)

var (
	flagPath            string
	flagOut             string
	flagInPlace         bool
	flagExclude         string
	flagMaxBytes        int64
	flagDefaultExcludes bool
	flagNoCache         bool
	flagDryRun          bool
	flagSARIF           bool
	flagFailOn          string
	flagGitignore       bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "batch [glob...]",
		Short: "Anonymize every text file matching the globs",
		Long: `Batch walks --path, anonymizes every text file matching the doublestar globs
(all files when none are given) and writes the masked copies under --out at the
same relative path. Unchanged inputs are skipped through a content-hash cache.`,
		RunE: runBatch,
		Example: `
gdprmask batch '**/*.txt' --out masked
gdprmask batch -p docs '*.md' --in-place --dry-run
gdprmask batch '**/*.txt' --sarif --fail-on high > gdprmask.sarif`,
	}
	rootCmd.AddCommand(cmd)

	addRequestFlags(cmd)
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "directory to walk")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "gdprmask-out", "directory for masked copies")
	cmd.Flags().BoolVar(&flagInPlace, "in-place", false, "rewrite inputs instead of writing to --out")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this (default 1 MiB)")
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "apply built-in exclude list (node_modules, dist, lock files, etc.)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "ignore and do not update the content-hash cache")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "exit 1 when a file reaches this risk: low|medium|high")
	cmd.Flags().BoolVar(&flagGitignore, "gitignore", false, "add the output directory and gdprmask state files to <path>/.gitignore")
}

// batchFile is the JSON summary for one file. It carries no text.
type batchFile struct {
	Path             string                   `json:"path"`
	Output           string                   `json:"output,omitempty"`
	Cached           bool                     `json:"cached"`
	Changed          bool                     `json:"changed"`
	Error            string                   `json:"error,omitempty"`
	TotalMasked      int                      `json:"total_entities_masked"`
	EntityCounts     map[types.EntityType]int `json:"entity_counts,omitempty"`
	DetectionMethods map[types.Method]int     `json:"detection_methods,omitempty"`
	PrivacyRisk      types.RiskLevel          `json:"privacy_risk,omitempty"`
}

type batchSummary struct {
	Files        []batchFile `json:"files"`
	FilesScanned int         `json:"files_scanned"`
	FilesCached  int         `json:"files_cached"`
	FilesFailed  int         `json:"files_failed"`
	Duration     string      `json:"duration"`
}

func summarize(res engine.FilesResult, took time.Duration) batchSummary {
	s := batchSummary{
		Files:        make([]batchFile, 0, len(res.Files)),
		FilesScanned: res.FilesScanned,
		FilesCached:  res.FilesCached,
		FilesFailed:  res.FilesFailed,
		Duration:     took.String(),
	}
	for _, f := range res.Files {
		bf := batchFile{Path: f.Path, Output: f.Output, Cached: f.Cached, Changed: f.Changed}
		switch {
		case f.Err != nil:
			bf.Error = f.Err.Error()
		default:
			bf.TotalMasked = f.Result.TotalMasked
			bf.DetectionMethods = f.Result.DetectionMethods
			bf.PrivacyRisk = f.Result.PrivacyRisk
			if len(f.Result.MaskedEntities) > 0 {
				bf.EntityCounts = map[types.EntityType]int{}
				for _, me := range f.Result.MaskedEntities {
					bf.EntityCounts[me.Type]++
				}
			}
		}
		s.Files = append(s.Files, bf)
	}
	return s
}

// ignorePatterns lists the state files plus outDir when it lies inside root.
func ignorePatterns(root, outDir string) []string {
	patterns := files.StateIgnores()
	if outDir == "" {
		return patterns
	}
	rel, err := filepath.Rel(root, outDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return patterns
	}
	return append(patterns, filepath.ToSlash(rel)+"/")
}

func runBatch(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}
	e, err := buildEngine()
	if err != nil {
		return err
	}

	root, _ := filepath.Abs(flagPath)
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return fmt.Errorf("%s is not a directory", flagPath)
	}
	defaultExcludes := flagDefaultExcludes
	if !cmd.Flags().Changed("default-excludes") {
		switch {
		case localCfg.DefaultExcludes != nil:
			defaultExcludes = *localCfg.DefaultExcludes
		case globalCfg.DefaultExcludes != nil:
			defaultExcludes = *globalCfg.DefaultExcludes
		}
	}
	cfg := engine.FilesConfig{
		Root:            root,
		Patterns:        args,
		ExcludeGlobs:    pickString(flagExclude, localCfg.Exclude, globalCfg.Exclude),
		MaxBytes:        pickInt64(flagMaxBytes, localCfg.MaxBytes, globalCfg.MaxBytes),
		DefaultExcludes: defaultExcludes,
		NoCache:         flagNoCache,
		DryRun:          flagDryRun,
	}
	if !flagInPlace {
		out, _ := filepath.Abs(flagOut)
		cfg.OutDir = out
	}

	quiet := flagJSON || flagSARIF
	total, _ := engine.CountTargets(cmd.Context(), cfg)
	if !quiet {
		_, _ = fmt.Fprintf(os.Stderr, "Anonymizing %d files under %s (%s)...\n", total, root, req.Language)
	}
	progressed := 0
	if total > 0 && !quiet {
		cfg.Progress = func() {
			progressed++
			if progressed%10 == 0 || progressed == total {
				pct := float64(progressed) / float64(total) * 100
				_, _ = fmt.Fprintf(os.Stderr, "\r[%d/%d] %.0f%%", progressed, total, pct)
			}
		}
	}

	start := time.Now()
	res, err := e.AnonymizeFiles(cmd.Context(), cfg, req)
	took := time.Since(start)
	if progressed > 0 {
		_, _ = fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("batch error: %w", err)
	}

	if flagGitignore && !flagDryRun {
		added, err := files.EnsureIgnored(root, ignorePatterns(root, cfg.OutDir)...)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "gitignore warning:", err)
		} else if len(added) > 0 && !quiet {
			_, _ = fmt.Fprintf(os.Stderr, "Added to .gitignore: %s\n", strings.Join(added, ", "))
		}
	}

	var results []types.Result
	for _, f := range res.Files {
		if !f.Cached && f.Err == nil {
			results = append(results, f.Result)
		}
	}
	recordRun("batch", req, results, res.FilesFailed, took)

	out := cmd.OutOrStdout()
	switch {
	case flagSARIF:
		if err := report.WriteSARIF(out, res.Files, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(out, summarize(res, took), !noColor(out)); err != nil {
			return err
		}
	default:
		report.PrintFiles(out, res, report.PrintOptions{NoColor: noColor(out), Duration: took})
		if flagDryRun {
			_, _ = fmt.Fprintln(os.Stderr, "dry run: nothing was written")
		}
	}

	if flagFailOn != "" && report.ShouldFail(res.Files, flagFailOn) {
		return errThreshold
	}
	return nil
}
