package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/credvault/internal/resolver"
)

func NewDetectCommand(app *App) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show which profile applies to the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			res, err := app.Resolver().Resolve(cwd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Source == resolver.SourceNone {
				if !quiet {
					fmt.Fprintln(out, "No profile applies to this directory")
				}
				return ExitCodeError{Code: 1}
			}

			if quiet {
				fmt.Fprintln(out, res.Profile)
				return nil
			}

			fmt.Fprintf(out, "Profile: %s\n", res.Profile)
			switch res.Source {
			case resolver.SourceMarker:
				fmt.Fprintf(out, "Source:  marker file (%s)\n", res.MarkerPath)
			case resolver.SourceCache:
				fmt.Fprintln(out, "Source:  cached lookup")
			case resolver.SourceDefault:
				fmt.Fprintln(out, "Source:  default profile")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the profile name")

	return cmd
}
