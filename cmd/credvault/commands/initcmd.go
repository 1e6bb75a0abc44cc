package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/credvault/internal/resolver"
)

func NewInitCommand(app *App) *cobra.Command {
	var noGitignore bool

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Pin a profile to the current directory",
		Long: `Init writes a marker file to the current directory so that commands run
from it (or any subdirectory) use the named profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if _, err := app.Store().Get(name); err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			path, err := app.Resolver().WriteMarker(cwd, name)
			if err != nil {
				return err
			}
			app.Logger.Info("Pinned profile %s (%s)", name, path)

			if !noGitignore {
				if err := appendGitignore(cwd); err != nil {
					app.Logger.Warn("Could not update .gitignore: %v", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "do not add the marker to .gitignore")

	return cmd
}

// appendGitignore adds the marker file to .gitignore when the directory is a
// git work tree and the entry is not already present.
func appendGitignore(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil
	}

	gitignore := filepath.Join(dir, ".gitignore")
	data, err := os.ReadFile(gitignore)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == resolver.MarkerFileName {
			return nil
		}
	}

	f, err := os.OpenFile(gitignore, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	entry := resolver.MarkerFileName + "\n"
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		entry = "\n" + entry
	}
	_, err = fmt.Fprint(f, entry)
	return err
}
