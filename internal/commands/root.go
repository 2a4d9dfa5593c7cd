package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "fintrack",
		Short:   "Local transactional store for imported bank transactions",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "fintrack.yaml", "path to the fintrack.yaml config")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
