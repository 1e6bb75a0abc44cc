package commands

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/credvault/internal/credential"
	"github.com/systmms/credvault/internal/logging"
	"github.com/systmms/credvault/internal/oauth"
	"github.com/systmms/credvault/internal/secretstore"
)

// newTestApp builds an App over a temp config dir with an in-memory secret
// backend, so no test touches the real keychain.
func newTestApp(t *testing.T) (*App, *secretstore.Memory) {
	t.Helper()
	backend := secretstore.NewMemory()
	app := &App{
		ConfigDir: t.TempDir(),
		Logger:    logging.NewWithWriter(io.Discard, false, true),
		backend:   backend,
	}
	return app, backend
}

// runCommand executes a built command with args and returns its combined
// output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// stubExchanger satisfies oauth.Exchanger without the network.
type stubExchanger struct {
	token oauth.Token
	err   error
	calls int
}

func (s *stubExchanger) Refresh(_ context.Context, refreshToken string) (oauth.Token, error) {
	s.calls++
	return s.token, s.err
}

// seedAPIKeyProfile stores an API key profile directly through the repository.
func seedAPIKeyProfile(t *testing.T, app *App, name, key string) {
	t.Helper()
	if err := app.Repository().Store(name, "", credential.NewAPIKey(key)); err != nil {
		t.Fatalf("seed profile %s: %v", name, err)
	}
}

// seedOAuthProfile stores an OAuth profile expiring at the given time.
func seedOAuthProfile(t *testing.T, app *App, name string, expiresAt time.Time) {
	t.Helper()
	if err := app.Repository().Store(name, "", credential.NewOAuth("at-"+name, "rt-"+name, expiresAt)); err != nil {
		t.Fatalf("seed profile %s: %v", name, err)
	}
}
