package commands

import (
	"github.com/spf13/cobra"
)

func NewCacheCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the directory resolution cache",
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Drop all cached directory lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Cache().Clear(); err != nil {
				return err
			}
			app.Logger.Info("Resolution cache cleared")
			return nil
		},
	}

	cmd.AddCommand(clear)

	return cmd
}
