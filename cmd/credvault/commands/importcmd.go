package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/oauth"
	"github.com/systmms/credvault/internal/session"
	"github.com/systmms/credvault/internal/vault"
)

func NewImportCommand(app *App) *cobra.Command {
	var (
		description string
		fromFile    string
		fromStdin   bool
	)

	cmd := &cobra.Command{
		Use:   "import <name>",
		Short: "Import an OAuth credential as a new profile",
		Long: `Import reads an OAuth token bundle and stores it under the named profile,
overwriting any credential the profile already holds.

By default the bundle is read from the Claude Code keychain entry on this
machine. Use --file or --stdin to import a credentials JSON document instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := vault.ValidateName(name); err != nil {
				return err
			}

			data, err := readBundlePayload(cmd, fromFile, fromStdin)
			if err != nil {
				return err
			}

			bundle, err := oauth.ParseClaudeCredentials(data)
			if err != nil {
				return err
			}

			if err := app.Lifecycle().Import(name, description, bundle); err != nil {
				return err
			}
			app.Logger.Info("Imported OAuth profile %s", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "profile description")
	cmd.Flags().StringVar(&fromFile, "file", "", "read the credentials JSON from a file")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the credentials JSON from standard input")
	cmd.MarkFlagsMutuallyExclusive("file", "stdin")

	return cmd
}

func readBundlePayload(cmd *cobra.Command, fromFile string, fromStdin bool) ([]byte, error) {
	switch {
	case fromFile != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return nil, cverrors.UserError{
				Message: "failed to read credentials file",
				Err:     err,
			}
		}
		return data, nil
	case fromStdin:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, cverrors.UserError{
				Message: "failed to read credentials from stdin",
				Err:     err,
			}
		}
		return data, nil
	default:
		store, err := session.NewClaudeCodeStore()
		if err != nil {
			return nil, err
		}
		payload, ok, err := store.GetActive()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, cverrors.UserError{
				Message:    "no Claude Code credentials found in the keychain",
				Suggestion: "log in with Claude Code first, or pass --file / --stdin",
			}
		}
		return payload, nil
	}
}
