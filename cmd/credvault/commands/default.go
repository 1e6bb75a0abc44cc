package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDefaultCommand(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "default [name]",
		Short: "Show or set the default profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				if err := app.Store().SetDefault(""); err != nil {
					return err
				}
				app.Logger.Info("Default profile cleared")
				return nil
			}

			if len(args) == 0 {
				name, err := app.Store().Default()
				if err != nil {
					return err
				}
				if name == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No default profile set")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			}

			if err := app.Store().SetDefault(args[0]); err != nil {
				return err
			}
			app.Logger.Info("Default profile set to %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear the default profile")

	return cmd
}
