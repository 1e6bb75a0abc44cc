package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewEnvCommand(app *App) *cobra.Command {
	var profileFlag string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print shell export statements for the resolved profile",
		Long: `Env prints an export statement for the resolved profile's credential,
suitable for eval:

  eval "$(credvault env)"

The secret is written to stdout only; nothing else shares the stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveProfileName(app, profileFlag)
			if err != nil {
				return err
			}

			v, err := ensureFreshValue(cmd, app, name)
			if err != nil {
				return err
			}

			app.Repository().TouchLastUsed(name)

			fmt.Fprintf(cmd.OutOrStdout(), "export %s=%q\n", bearerEnvVar, v.Bearer())
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "profile to use (defaults to the resolved profile)")

	return cmd
}
