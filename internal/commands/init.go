package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/config"
)

func newInitCommand() *cobra.Command {
	var storagePath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a fintrack.yaml config and an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := configPath(cmd)
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("%s already exists", cfgPath)
			}

			cfg := config.Default(storagePath)
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}

			// Opening seeds the metadata record and system categories.
			app, err := openApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "initialized store at %s (schema %s)\n",
				cfg.Storage.Path, app.Ledger.Metadata().SchemaVersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&storagePath, "storage", "fintrack.db", "path of the store database file")
	return cmd
}
