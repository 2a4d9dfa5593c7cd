package commands

import (
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store contents, capacity status, and snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(configPath(cmd))
			if err != nil {
				return err
			}
			defer app.Close()

			app.Monitor.Check()
			report := app.Monitor.Report()
			c := app.Ledger.Collections()
			meta := app.Ledger.Metadata()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema:          %s (modified %s)\n", meta.SchemaVersion, meta.LastModified.Format(time.RFC3339))
			fmt.Fprintf(out, "transactions:    %d\n", len(c.Transactions))
			fmt.Fprintf(out, "accounts:        %d\n", len(c.Accounts))
			fmt.Fprintf(out, "files:           %d\n", len(c.Files))
			fmt.Fprintf(out, "categories:      %d\n", len(c.Categories))
			fmt.Fprintf(out, "categorizations: %d\n", len(c.Categorizations))
			fmt.Fprintf(out, "capacity:        %s (%d/%d bytes, %.1f%%)\n",
				report.Status, report.UsedBytes, report.CapacityBytes, report.Ratio*100)
			if report.UnprotectedOps > 0 {
				fmt.Fprintf(out, "warning:         %d operation(s) ran without rollback protection\n", report.UnprotectedOps)
			}
			if report.Unresolved {
				fmt.Fprintln(out, "warning:         capacity pressure unresolved after cleanup")
			}

			for _, snap := range app.Snapshots.List() {
				fmt.Fprintf(out, "snapshot:        %d %q (%s)\n", snap.ID, snap.Label, snap.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// formatMoney renders a decimal amount in an account's currency.
func formatMoney(d decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%s %s", d.StringFixed(2), code)
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
