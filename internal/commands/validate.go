package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check referential integrity and balance consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(configPath(cmd))
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			report := app.Ledger.Validate()
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "%s [%s] %s: %s\n", issue.Severity, issue.Kind, issue.ID, issue.Description)
			}

			if report.Valid {
				fmt.Fprintln(out, "store is consistent")
				return nil
			}

			if !fix {
				return fmt.Errorf("%d issue(s) found", len(report.Issues))
			}

			summary, err := app.Ledger.AutoFix()
			if err != nil {
				return fmt.Errorf("auto-fix: %w", err)
			}
			fmt.Fprintf(out, "auto-fix: removed %d transaction(s), %d categorization(s), recounted %d file(s)\n",
				summary.RemovedTransactions, summary.RemovedCategorizations, summary.RecountedFiles)

			if report := app.Ledger.Validate(); !report.Valid {
				return fmt.Errorf("%d issue(s) remain after auto-fix", len(report.Issues))
			}
			fmt.Fprintln(out, "store is consistent")
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "repair orphaned records and stale counts")
	return cmd
}
