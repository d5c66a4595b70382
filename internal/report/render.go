// Package report renders anonymization results for terminals: entity and
// audit tables, coloured risk levels, highlighted JSON and SARIF.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/redactyl/gdprmask/internal/audit"
	"github.com/redactyl/gdprmask/internal/detectors"
	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/types"
)

var (
	riskHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	riskMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	riskLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ColorRisk renders a risk level, coloured unless noColor is set.
func ColorRisk(level types.RiskLevel, noColor bool) string {
	s := string(level)
	if noColor {
		return s
	}
	switch level {
	case types.RiskHigh:
		return riskHighStyle.Render(s)
	case types.RiskMed:
		return riskMedStyle.Render(s)
	default:
		return riskLowStyle.Render(s)
	}
}

func heading(s string, noColor bool) string {
	if noColor {
		return s
	}
	return headingStyle.Render(s)
}

// PrintResult writes the anonymized text followed by a table of masked
// entities and the risk summary. Original values are not printed.
func PrintResult(w io.Writer, res types.Result, opts PrintOptions) {
	fmt.Fprintln(w, res.AnonymizedText)
	fmt.Fprintln(w)
	if res.TotalMasked == 0 {
		fmt.Fprintln(w, "No personal data found ✅")
	} else {
		fmt.Fprintln(w, heading(fmt.Sprintf("Masked entities: %d", res.TotalMasked), opts.NoColor))
		table := tablewriter.NewWriter(w)
		table.Header("Type", "Method", "Confidence", "Span", "Mask")
		for _, me := range res.MaskedEntities {
			_ = table.Append(
				string(me.Type),
				string(me.Method),
				string(me.Confidence),
				fmt.Sprintf("%d-%d", me.Start, me.End),
				me.Mask,
			)
		}
		_ = table.Render()
	}
	fmt.Fprintf(w, "Privacy risk: %s\n", ColorRisk(res.PrivacyRisk, opts.NoColor))
	for _, n := range res.ComplianceNotes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
	if len(res.Compliance.SpecialCategories) > 0 {
		fmt.Fprintf(w, "Special categories: %s\n", strings.Join(res.Compliance.SpecialCategories, ", "))
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Duration: %.2fs\n", opts.Duration.Seconds())
	}
}

// PrintFiles writes one row per file of a batch run and a summary footer.
func PrintFiles(w io.Writer, res engine.FilesResult, opts PrintOptions) {
	if len(res.Files) == 0 {
		fmt.Fprintln(w, "No files matched")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("Path", "Entities", "Risk", "Status")
	for _, f := range res.Files {
		status := "written"
		switch {
		case f.Err != nil:
			status = "error: " + f.Err.Error()
		case f.Cached:
			status = "cached"
		case !f.Changed:
			status = "unchanged"
		}
		entities, level := "-", "-"
		if f.Err == nil && f.Result.PrivacyRisk != "" {
			entities = strconv.Itoa(f.Result.TotalMasked)
			level = ColorRisk(f.Result.PrivacyRisk, opts.NoColor)
		}
		_ = table.Append(f.Path, entities, level, status)
	}
	_ = table.Render()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files processed: %d (cached: %d, failed: %d)\n", res.FilesScanned, res.FilesCached, res.FilesFailed)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Duration: %.2fs\n", opts.Duration.Seconds())
	}
}

// PrintAudit writes the audit history, newest first.
func PrintAudit(w io.Writer, records []audit.RunRecord, opts PrintOptions) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No audit records")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("#", "Time", "Command", "Lang", "Inputs", "Masked", "Risk", "Run ID")
	for i, r := range records {
		_ = table.Append(
			strconv.Itoa(i),
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Command,
			string(r.Language),
			strconv.Itoa(r.Inputs),
			strconv.Itoa(r.TotalMasked),
			ColorRisk(r.PrivacyRisk, opts.NoColor),
			r.RunID,
		)
	}
	_ = table.Render()
}

// PrintRules lists detectors and the rule tables that apply to lang.
func PrintRules(w io.Writer, lang types.Language, ds []detectors.Detector, rules []detectors.Rule) {
	fmt.Fprintf(w, "Language: %s\n", lang)
	methods := make([]string, 0, len(ds))
	for _, d := range ds {
		methods = append(methods, string(d.Method()))
	}
	fmt.Fprintf(w, "Detectors: %s\n\n", strings.Join(methods, ", "))

	table := tablewriter.NewWriter(w)
	table.Header("Rule", "Type", "Confidence", "Checksum")
	for _, r := range rules {
		check := "no"
		if r.Validated() {
			check = "yes"
		}
		_ = table.Append(r.ID, string(r.Type), string(r.Confidence), check)
	}
	_ = table.Render()
}
