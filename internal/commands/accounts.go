package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List registered accounts with derived balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(configPath(cmd))
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tINSTITUTION\tBALANCE")
			for _, a := range app.Ledger.Accounts() {
				balance := formatMoney(a.Balance, a.Currency)
				if derived, ok := app.Ledger.DerivedBalance(a.ID); ok {
					balance = formatMoney(derived, a.Currency)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Institution, balance)
			}
			return w.Flush()
		},
	}
}
