package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/model"
)

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all collections to a single JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(configPath(cmd))
			if err != nil {
				return err
			}
			defer app.Close()

			doc := app.Ledger.Export()
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding export: %w", err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d transaction(s) to %s\n",
				len(doc.Collections.Transactions), args[0])
			return nil
		},
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Atomically replace the store from an exported document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading import: %w", err)
			}
			var doc model.ExportDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("decoding import: %w", err)
			}

			app, err := openApp(configPath(cmd))
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Ledger.Import(doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d transaction(s) from %s\n",
				len(doc.Collections.Transactions), args[0])
			return nil
		},
	}
}
