package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/credvault/cmd/credvault/commands"
	"github.com/systmms/credvault/internal/logging"
	"github.com/systmms/credvault/internal/vault"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()
	memguard.Purge()

	if err != nil {
		var exit commands.ExitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configDir string
		noColor   bool
		debug     bool
	)

	app := &commands.App{}

	rootCmd := &cobra.Command{
		Use:   "credvault",
		Short: "Credential profiles for Anthropic API keys and Claude OAuth tokens",
		Long: `credvault stores named credential profiles in your platform secret store
and injects the right one per directory, refreshing OAuth tokens as needed.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger with parsed flags
			app.Logger = logging.New(debug, noColor)

			if configDir == "" {
				dir, err := vault.DefaultDir()
				if err != nil {
					return err
				}
				configDir = dir
			}
			app.ConfigDir = configDir
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.config/credvault)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(
		commands.NewAddCommand(app),
		commands.NewImportCommand(app),
		commands.NewListCommand(app),
		commands.NewShowCommand(app),
		commands.NewRemoveCommand(app),
		commands.NewDefaultCommand(app),
		commands.NewDetectCommand(app),
		commands.NewInitCommand(app),
		commands.NewCacheCommand(app),
		commands.NewRefreshCommand(app),
		commands.NewExecCommand(app),
		commands.NewEnvCommand(app),
		commands.NewCompletionCommand(app),
	)

	return rootCmd.Execute()
}
