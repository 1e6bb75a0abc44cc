package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/credvault/internal/oauth"
	"github.com/systmms/credvault/internal/vault"
)

func NewShowCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show profile details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store().Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile:     %s\n", p.Name)
			fmt.Fprintf(out, "Type:        %s\n", credentialTypeLabel(p.CredentialType))
			if p.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", p.Description)
			}
			fmt.Fprintf(out, "Created:     %s\n", p.CreatedAt.Local().Format(time.RFC1123))
			if p.LastUsed != nil {
				fmt.Fprintf(out, "Last used:   %s\n", p.LastUsed.Local().Format(time.RFC1123))
			}
			if p.CredentialType == vault.TypeOAuth && p.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires:     %s\n", p.ExpiresAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Status:      %s\n", oauth.StateAt(*p.ExpiresAt, time.Now()))
			}

			def, err := app.Store().Default()
			if err == nil && def == p.Name {
				fmt.Fprintln(out, "Default:     yes")
			}
			return nil
		},
	}

	return cmd
}
