package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	cverrors "github.com/systmms/credvault/internal/errors"
)

// resolveProfileName turns an optional --profile flag into a concrete profile
// name: an explicit flag is verified against the store, otherwise the
// directory resolver runs from the working directory.
func resolveProfileName(app *App, flagValue string) (string, error) {
	if flagValue != "" {
		if _, err := app.Store().Get(flagValue); err != nil {
			return "", err
		}
		return flagValue, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", cverrors.UserError{Message: "could not determine working directory", Err: err}
	}

	res, err := app.Resolver().Resolve(cwd)
	if err != nil {
		return "", err
	}
	if res.Profile == "" {
		return "", cverrors.UserError{
			Message:    "no profile resolved for this directory and no default profile is set",
			Suggestion: "Run 'credvault init <profile>' here, or 'credvault default <profile>'",
		}
	}
	app.Logger.Debug("resolved profile %s (%s)", res.Profile, res.Source)
	return res.Profile, nil
}

// validateAPIKey enforces the Anthropic API key shape before it reaches the
// secret store.
func validateAPIKey(key string) error {
	if !strings.HasPrefix(key, "sk-ant-") {
		return cverrors.UserError{
			Message:    "API key does not look like an Anthropic key",
			Suggestion: "Keys start with 'sk-ant-'",
		}
	}
	if len(key) < 20 {
		return cverrors.UserError{
			Message:    "API key is too short",
			Suggestion: "Paste the full key from the Anthropic console",
		}
	}
	return nil
}

// formatRelativeTime renders a timestamp for table output.
func formatRelativeTime(ts *time.Time) string {
	if ts == nil {
		return "never"
	}
	d := time.Since(*ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return ts.Format("2006-01-02")
	}
}
