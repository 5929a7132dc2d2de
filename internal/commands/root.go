package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/buildinfo"
	"github.com/cleared-dev/tally/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	user       string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Personal finance ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.FileName, "path to the config file")
	rootCmd.PersistentFlags().StringVar(&g.user, "user", "", "act as this user instead of the session user")

	rootCmd.AddCommand(
		newInitCommand(g),
		newAccountCommand(g),
		newTxCommand(g),
		newTransferCommand(g),
		newReportCommand(g),
		newExportCommand(g),
		newUserCommand(g),
		newThemeCommand(g),
		newLogCommand(g),
	)

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		printError(cmd.ErrOrStderr(), err.Error())
		return 1
	}
	return 0
}
