package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/vault"
)

func NewRefreshCommand(app *App) *cobra.Command {
	var profileFlag string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh an OAuth profile's tokens if they are near expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveProfileName(app, profileFlag)
			if err != nil {
				return err
			}

			p, err := app.Store().Get(name)
			if err != nil {
				return err
			}
			if p.CredentialType != vault.TypeOAuth {
				return cverrors.UserError{
					Message:    "profile " + name + " holds an API key, which never needs refreshing",
					Suggestion: "refresh only applies to OAuth profiles",
				}
			}

			v, err := app.Lifecycle().EnsureFresh(cmd.Context(), name)
			if err != nil {
				var deferred cverrors.RefreshDeferredError
				if errors.As(err, &deferred) {
					app.Logger.Warn("Refresh failed; current token is still usable until %s",
						deferred.ExpiresAt.Local().Format(time.RFC1123))
					return err
				}
				return err
			}

			app.Logger.Info("Profile %s is fresh (expires %s)",
				name, v.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "profile to refresh (defaults to the resolved profile)")

	return cmd
}
