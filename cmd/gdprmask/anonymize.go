package gdprmask

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/redact"
	"github.com/redactyl/gdprmask/internal/report"
	"github.com/redactyl/gdprmask/internal/types"
)

var (
	flagFile  string
	flagCopy  bool
	flagWrite bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "anonymize [text]",
		Short: "Mask personal data in text from an argument, a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnonymize,
		Example: `
gdprmask anonymize "Dr. Ana Horvat iz Ljubljane"
gdprmask anonymize --lang hr --descriptive < pismo.txt
gdprmask anonymize --file zapisnik.txt --preserve LOC,ORG --write`,
	}
	rootCmd.AddCommand(cmd)

	addRequestFlags(cmd)
	cmd.Flags().StringVarP(&flagFile, "file", "f", "", "read text from this file")
	cmd.Flags().BoolVar(&flagCopy, "copy", false, "copy the anonymized text to the clipboard")
	cmd.Flags().BoolVar(&flagWrite, "write", false, "rewrite --file in place with the anonymized text")
}

// addRequestFlags registers the per-call masking options.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagDescriptive, "descriptive", false, "replace entities with <MASKED_TYPE> instead of mask characters")
	cmd.Flags().StringVar(&flagPreserve, "preserve", "", "comma-separated entity types to keep (e.g. LOC,ORG)")
	cmd.Flags().StringVar(&flagMaskChar, "mask-char", "", "mask character (default *)")
	cmd.Flags().StringVar(&flagDisable, "disable", "", "comma-separated detectors to disable (ner, phone_lib, pattern, regional)")
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case len(args) == 1 && flagFile != "":
		return "", errors.New("pass text either as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case flagFile != "":
		b, err := os.ReadFile(flagFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", flagFile, err)
		}
		return string(b), nil
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
}

func runAnonymize(cmd *cobra.Command, args []string) error {
	if flagWrite && flagFile == "" {
		return errors.New("--write requires --file")
	}
	req, err := buildRequest()
	if err != nil {
		return err
	}
	e, err := buildEngine()
	if err != nil {
		return err
	}

	start := time.Now()
	var res types.Result
	if flagWrite {
		_, err = redact.RewriteFile(flagFile, func(content string) (string, error) {
			r, err := e.Anonymize(cmd.Context(), content, req)
			res = r
			return r.AnonymizedText, err
		})
	} else {
		var text string
		if text, err = readInput(cmd, args); err != nil {
			return err
		}
		// stdin and files usually end with a newline the user did not type
		if len(args) == 0 {
			text = strings.TrimRight(text, "\r\n")
		}
		res, err = e.Anonymize(cmd.Context(), text, req)
	}
	took := time.Since(start)
	if err != nil {
		recordRun("anonymize", req, nil, 1, took)
		return err
	}
	recordRun("anonymize", req, []types.Result{res}, 0, took)

	if flagCopy {
		if err := clipboard.WriteAll(res.AnonymizedText); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "clipboard warning:", err)
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return report.WriteJSON(out, res, !noColor(out))
	}
	report.PrintResult(out, res, report.PrintOptions{NoColor: noColor(out), Duration: took})
	if flagWrite {
		_, _ = fmt.Fprintln(os.Stderr, "Wrote", flagFile)
	}
	return nil
}
