package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/credvault/internal/credential"
	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/execenv"
	"github.com/systmms/credvault/internal/oauth"
	"github.com/systmms/credvault/internal/secure"
	"github.com/systmms/credvault/internal/session"
	"github.com/systmms/credvault/internal/vault"
)

// bearerEnvVar is what child processes read the injected credential from.
const bearerEnvVar = "ANTHROPIC_API_KEY"

func NewExecCommand(app *App) *cobra.Command {
	var (
		profileFlag    string
		switchKeychain bool
	)

	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command> [args...]",
		Short: "Run a command with the resolved profile's credential injected",
		Long: `Exec resolves the profile for the current directory, refreshes its tokens
when needed, and runs the command with ANTHROPIC_API_KEY set. The child's
stdio is inherited and its exit code becomes credvault's exit code.

With --switch-keychain the profile's OAuth tokens are installed into the
Claude Code keychain entry for the duration of the command, and the previous
entry is restored afterwards.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveProfileName(app, profileFlag)
			if err != nil {
				return err
			}

			v, err := ensureFreshValue(cmd, app, name)
			if err != nil {
				return err
			}

			if switchKeychain && v.Kind != vault.TypeOAuth {
				return cverrors.UserError{
					Message:    "profile " + name + " holds an API key",
					Suggestion: "--switch-keychain only works with OAuth profiles",
				}
			}

			app.Repository().TouchLastUsed(name)

			buf, err := secure.NewSecureBufferFromString(v.Bearer())
			if err != nil {
				return err
			}
			defer buf.Destroy()

			run := func() (int, error) {
				locked, err := buf.Open()
				if err != nil {
					return 0, err
				}
				env := map[string]string{bearerEnvVar: locked.String()}
				app.Logger.Debug("injecting %s=%s", bearerEnvVar, execenv.MaskValue(locked.String()))
				code, runErr := execenv.New(app.Logger).Run(cmd.Context(), execenv.Options{
					Command:     args,
					Environment: env,
				})
				locked.Destroy()
				return code, runErr
			}

			var code int
			if switchKeychain {
				code, err = runWithKeychainSwitch(app, v, run)
			} else {
				code, err = run()
			}
			if err != nil {
				return err
			}
			if code != 0 {
				return ExitCodeError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "profile to use (defaults to the resolved profile)")
	cmd.Flags().BoolVar(&switchKeychain, "switch-keychain", false, "install the OAuth tokens into the Claude Code keychain for the duration of the command")

	return cmd
}

// ensureFreshValue runs the lifecycle check and downgrades a deferred refresh
// to a warning: the stale token is still usable until its expiry.
func ensureFreshValue(cmd *cobra.Command, app *App, name string) (credential.Value, error) {
	v, err := app.Lifecycle().EnsureFresh(cmd.Context(), name)
	if err != nil {
		var deferred cverrors.RefreshDeferredError
		if errors.As(err, &deferred) {
			app.Logger.Warn("Token refresh failed; using current token (valid until %s)",
				deferred.ExpiresAt.Local().Format(time.RFC1123))
			return v, nil
		}
		return credential.Value{}, err
	}
	return v, nil
}

func runWithKeychainSwitch(app *App, v credential.Value, run func() (int, error)) (int, error) {
	payload, err := oauth.MarshalClaudeCredentials(oauth.Bundle{
		AccessToken:  v.AccessToken,
		RefreshToken: v.RefreshToken,
		ExpiresAt:    v.ExpiresAt,
	})
	if err != nil {
		return 0, err
	}

	store, err := session.NewClaudeCodeStore()
	if err != nil {
		return 0, err
	}
	return session.NewController(store, app.Logger).Run(payload, run)
}
