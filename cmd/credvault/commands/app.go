package commands

import (
	"fmt"

	"github.com/systmms/credvault/internal/credential"
	"github.com/systmms/credvault/internal/logging"
	"github.com/systmms/credvault/internal/oauth"
	"github.com/systmms/credvault/internal/resolver"
	"github.com/systmms/credvault/internal/secretstore"
	"github.com/systmms/credvault/internal/vault"
)

// App carries the runtime wiring shared by every command: the config
// directory and the logger, with constructors for the pieces built on them.
// It is populated by the root command's PersistentPreRun once flags are
// parsed.
type App struct {
	ConfigDir string
	Logger    *logging.Logger

	// backend overrides the platform secret store selection. Tests use this
	// to wire an in-memory backend.
	backend secretstore.Backend
	// exchanger overrides the token exchange. Tests use this to avoid the
	// network.
	exchanger oauth.Exchanger
}

// Store returns the profile record store.
func (a *App) Store() *vault.Store {
	return vault.NewStore(a.ConfigDir)
}

// Backend returns the secret store backend.
func (a *App) Backend() secretstore.Backend {
	if a.backend != nil {
		return a.backend
	}
	return secretstore.Open(a.ConfigDir)
}

// Repository returns the credential repository.
func (a *App) Repository() *credential.Repository {
	return credential.NewRepository(a.Backend(), a.Store(), a.Logger)
}

// Cache returns the directory resolution cache.
func (a *App) Cache() *resolver.Cache {
	return resolver.NewCache(a.ConfigDir)
}

// Resolver returns the profile resolver.
func (a *App) Resolver() *resolver.Resolver {
	return resolver.New(a.Store(), a.Cache(), a.Logger)
}

// Lifecycle returns the OAuth lifecycle manager.
func (a *App) Lifecycle() *oauth.Manager {
	ex := a.exchanger
	if ex == nil {
		ex = oauth.NewAnthropicExchanger()
	}
	return oauth.NewManager(a.Repository(), ex, a.Logger)
}

// ExitCodeError carries a child process's exit status up to main, which exits
// with it after the deferred cleanup has run.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
