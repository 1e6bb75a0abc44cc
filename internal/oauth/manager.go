package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/systmms/credvault/internal/credential"
	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/logging"
	"github.com/systmms/credvault/internal/vault"
)

// exchangeTimeout bounds a single refresh exchange. A timeout degrades to the
// deferred/expired semantics like any other exchange failure.
const exchangeTimeout = 30 * time.Second

// Manager drives the lifecycle of stored OAuth tokens.
type Manager struct {
	repo      *credential.Repository
	exchanger Exchanger
	logger    *logging.Logger

	now     func() time.Time
	timeout time.Duration
}

// NewManager creates a lifecycle manager over the given repository and
// exchanger.
func NewManager(repo *credential.Repository, exchanger Exchanger, logger *logging.Logger) *Manager {
	return &Manager{
		repo:      repo,
		exchanger: exchanger,
		logger:    logger,
		now:       time.Now,
		timeout:   exchangeTimeout,
	}
}

// EnsureFresh loads the profile's credential and, for OAuth tokens near or
// past expiry, attempts a single refresh exchange.
//
// A *cverrors.RefreshDeferredError return still carries a usable value: the
// exchange failed but the previous token has not expired yet. Callers treat
// it as a warning and proceed.
func (m *Manager) EnsureFresh(ctx context.Context, name string) (credential.Value, error) {
	v, err := m.repo.Load(name)
	if err != nil {
		return credential.Value{}, err
	}

	// API keys have no expiry and no lifecycle.
	if v.Kind != vault.TypeOAuth {
		return v, nil
	}

	state := StateAt(v.ExpiresAt, m.now())
	if state == StateValid {
		return v, nil
	}

	if v.RefreshToken == "" {
		if state == StateExpired {
			return credential.Value{}, cverrors.CredentialExpiredError{Profile: name}
		}
		return v, cverrors.RefreshDeferredError{
			Profile:   name,
			ExpiresAt: v.ExpiresAt,
			Err:       errors.New("no refresh token stored"),
		}
	}

	m.logger.Debug("token for profile %s is %s, refreshing", name, state)

	refreshCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	tok, err := m.exchanger.Refresh(refreshCtx, v.RefreshToken)
	if err != nil {
		if state == StateExpired {
			return credential.Value{}, cverrors.CredentialExpiredError{Profile: name}
		}
		return v, cverrors.RefreshDeferredError{Profile: name, ExpiresAt: v.ExpiresAt, Err: err}
	}

	// An absent new refresh token means the endpoint reused the old one.
	newRefresh := tok.RefreshToken
	if newRefresh == "" {
		newRefresh = v.RefreshToken
	}

	refreshed := credential.NewOAuth(tok.AccessToken, newRefresh, tok.ExpiresAt)
	if err := m.repo.Store(name, "", refreshed); err != nil {
		return credential.Value{}, err
	}

	m.logger.Debug("token for profile %s refreshed, new expiry %s", name, tok.ExpiresAt.Format(time.RFC3339))
	return refreshed, nil
}

// Import validates an OAuth bundle and stores it under the profile,
// overwriting any prior credential.
func (m *Manager) Import(name, description string, b Bundle) error {
	if err := b.Validate(m.now()); err != nil {
		return err
	}
	return m.repo.Store(name, description, credential.NewOAuth(b.AccessToken, b.RefreshToken, b.ExpiresAt.UTC()))
}
