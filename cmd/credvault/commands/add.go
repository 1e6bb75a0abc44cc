package commands

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/credvault/internal/credential"
	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/logging"
	"github.com/systmms/credvault/internal/vault"
)

// apiKeyEnvVar lets scripts hand the key over without a pipe.
const apiKeyEnvVar = "CREDVAULT_API_KEY"

func NewAddCommand(app *App) *cobra.Command {
	var (
		description string
		keyStdin    bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new API key profile",
		Long: `Add a new profile backed by a static Anthropic API key.

The key is read from the ` + apiKeyEnvVar + ` environment variable, or from
stdin with --api-key-stdin. It is stored in the secret store only; the vault
config keeps metadata and never the key itself.

Examples:
  CREDVAULT_API_KEY=sk-ant-... credvault add work --description "work account"
  pbpaste | credvault add personal --api-key-stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := vault.ValidateName(name); err != nil {
				return err
			}
			if _, err := app.Store().Get(name); err == nil {
				return cverrors.ProfileExistsError{Name: name}
			}

			key, err := readAPIKey(cmd.InOrStdin(), keyStdin)
			if err != nil {
				return err
			}
			if err := validateAPIKey(key); err != nil {
				return err
			}
			app.Logger.Debug("validated API key %s", logging.Secret(key))

			if err := app.Repository().Store(name, description, credential.NewAPIKey(key)); err != nil {
				return err
			}

			app.Logger.Info("profile '%s' added", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Profile description")
	cmd.Flags().BoolVar(&keyStdin, "api-key-stdin", false, "Read the API key from stdin")

	return cmd
}

func readAPIKey(stdin io.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		reader := bufio.NewReader(stdin)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", cverrors.UserError{Message: "failed to read API key from stdin", Err: err}
		}
		key := strings.TrimSpace(line)
		if key == "" {
			return "", cverrors.UserError{
				Message:    "no API key on stdin",
				Suggestion: "Pipe the key in, e.g. pbpaste | credvault add <name> --api-key-stdin",
			}
		}
		return key, nil
	}

	if key := strings.TrimSpace(os.Getenv(apiKeyEnvVar)); key != "" {
		return key, nil
	}
	return "", cverrors.UserError{
		Message:    "no API key provided",
		Suggestion: "Set " + apiKeyEnvVar + " or pass --api-key-stdin",
	}
}
