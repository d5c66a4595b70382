package gdprmask

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/audit"
	"github.com/redactyl/gdprmask/internal/report"
)

func init() {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the history of anonymization runs in this directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			records, err := audit.NewAuditLog(wd).LoadHistory()
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if records == nil {
				records = []audit.RunRecord{}
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return report.WriteJSON(out, records, !noColor(out))
			}
			report.PrintAudit(out, records, report.PrintOptions{NoColor: noColor(out)})
			return nil
		},
	}
	rootCmd.AddCommand(auditCmd)

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <index>",
		Short: "Remove one record (index as shown by 'gdprmask audit')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			if !yes {
				return errors.New("refusing to edit the audit log without --yes")
			}
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := audit.NewAuditLog(wd).DeleteRecord(idx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Deleted record", idx)
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	auditCmd.AddCommand(deleteCmd)
}
