package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	verrors "github.com/systmms/credvault/internal/errors"
)

func NewRemoveCommand(app *App) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a profile and its stored credentials",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if _, err := app.Store().Get(name); err != nil {
				return err
			}

			if !skipConfirm {
				fmt.Fprintf(cmd.OutOrStdout(), "Remove profile %q and its credentials? [y/N] ", name)
				reader := bufio.NewReader(cmd.InOrStdin())
				line, _ := reader.ReadString('\n')
				answer := strings.ToLower(strings.TrimSpace(line))
				if answer != "y" && answer != "yes" {
					app.Logger.Info("Aborted")
					return nil
				}
			}

			if err := app.Repository().Delete(name); err != nil {
				var partial verrors.PartialRemovalError
				if errors.As(err, &partial) {
					// Profile record is gone; some secret entries may linger.
					app.Logger.Warn("Profile %s removed, but some credentials could not be deleted", name)
					return err
				}
				return err
			}

			app.Logger.Info("Removed profile %s", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "skip confirmation prompt")

	return cmd
}
