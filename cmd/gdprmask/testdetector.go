package gdprmask

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/detectors"
	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/report"
	"github.com/redactyl/gdprmask/internal/types"
)

func init() {
	cmd := &cobra.Command{
		Use:   "test-detector <method>",
		Short: "Run a single detector against text from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := types.ParseMethod(args[0])
			if !ok {
				return fmt.Errorf("unknown detector %q (available: %s)", args[0], joinMethods())
			}
			req, err := buildRequest()
			if err != nil {
				return err
			}
			full, err := buildEngine()
			if err != nil {
				return err
			}
			d, ok := detectors.ByMethod(full.Detectors(), m)
			if !ok {
				return fmt.Errorf("detector %s is disabled", m)
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}

			e := engine.New(engine.WithDetectors(d))
			res, err := e.Anonymize(cmd.Context(), strings.TrimRight(string(data), "\r\n"), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return report.WriteJSON(out, res, !noColor(out))
			}
			report.PrintResult(out, res, report.PrintOptions{NoColor: noColor(out)})
			return nil
		},
	}
	cmd.Long = "Available detectors: " + joinMethods()
	rootCmd.AddCommand(cmd)
}
