package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/systmms/credvault/internal/oauth"
	"github.com/systmms/credvault/internal/vault"
)

func NewListCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Store().Load()
			if err != nil {
				return err
			}

			if len(cfg.Profiles) == 0 {
				app.Logger.Info("no profiles yet")
				app.Logger.Info("add one with: credvault add <name>, or credvault import")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"", "NAME", "TYPE", "DESCRIPTION", "LAST USED", "STATUS"})

			for _, p := range cfg.Profiles {
				marker := ""
				if p.Name == cfg.DefaultProfile {
					marker = "*"
				}
				t.AppendRow(table.Row{
					marker,
					p.Name,
					credentialTypeLabel(p.CredentialType),
					p.Description,
					formatRelativeTime(p.LastUsed),
					profileStatus(p),
				})
			}

			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}

	return cmd
}

func credentialTypeLabel(ct vault.CredentialType) string {
	switch ct {
	case vault.TypeAPIKey:
		return "api key"
	case vault.TypeOAuth:
		return "oauth"
	}
	return string(ct)
}

// profileStatus summarizes expiry for table display. API keys have no expiry.
func profileStatus(p vault.Profile) string {
	if p.CredentialType != vault.TypeOAuth || p.ExpiresAt == nil {
		return "-"
	}
	switch oauth.StateAt(*p.ExpiresAt, time.Now()) {
	case oauth.StateExpired:
		return "expired"
	case oauth.StateExpiringSoon:
		return "expiring soon"
	}
	return "valid until " + p.ExpiresAt.Local().Format("Jan 2 15:04")
}
