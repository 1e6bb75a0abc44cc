package credential

import (
	"errors"
	"fmt"
	"time"

	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/logging"
	"github.com/systmms/credvault/internal/secretstore"
	"github.com/systmms/credvault/internal/vault"
)

// Repository composes the secret store backend with the profile record store.
// Secret material goes to the backend; everything else goes to the records.
type Repository struct {
	backend secretstore.Backend
	store   *vault.Store
	logger  *logging.Logger
}

// NewRepository creates a repository over the given backend and record store.
func NewRepository(backend secretstore.Backend, store *vault.Store, logger *logging.Logger) *Repository {
	return &Repository{
		backend: backend,
		store:   store,
		logger:  logger,
	}
}

// Store writes the credential value into the secret store and upserts the
// matching profile record, overwriting any prior value. An existing record
// keeps its creation time and description unless a new description is given.
func (r *Repository) Store(name, description string, v Value) error {
	if err := vault.ValidateName(name); err != nil {
		return err
	}

	record := vault.Profile{
		Name:           name,
		Description:    description,
		CredentialType: v.Kind,
		CreatedAt:      time.Now().UTC(),
	}
	if existing, err := r.store.Get(name); err == nil {
		record.CreatedAt = existing.CreatedAt
		record.LastUsed = existing.LastUsed
		if description == "" {
			record.Description = existing.Description
		}
	}

	switch v.Kind {
	case vault.TypeAPIKey:
		if err := r.backend.Set(apiKeyKey(name), []byte(v.APIKey)); err != nil {
			return fmt.Errorf("storing API key for profile '%s': %w", name, err)
		}
		// A type change must not strand stale OAuth entries.
		if _, err := r.backend.Delete(oauthAccessKey(name)); err != nil {
			r.logger.Debug("could not clear stale oauth-access entry for %s: %v", name, err)
		}
		if _, err := r.backend.Delete(oauthRefreshKey(name)); err != nil {
			r.logger.Debug("could not clear stale oauth-refresh entry for %s: %v", name, err)
		}
	case vault.TypeOAuth:
		expiresAt := v.ExpiresAt
		record.ExpiresAt = &expiresAt
		if err := r.backend.Set(oauthAccessKey(name), []byte(v.AccessToken)); err != nil {
			return fmt.Errorf("storing access token for profile '%s': %w", name, err)
		}
		if v.RefreshToken != "" {
			if err := r.backend.Set(oauthRefreshKey(name), []byte(v.RefreshToken)); err != nil {
				return fmt.Errorf("storing refresh token for profile '%s': %w", name, err)
			}
		} else {
			if _, err := r.backend.Delete(oauthRefreshKey(name)); err != nil {
				r.logger.Debug("could not clear refresh entry for %s: %v", name, err)
			}
		}
		if _, err := r.backend.Delete(apiKeyKey(name)); err != nil {
			r.logger.Debug("could not clear stale apikey entry for %s: %v", name, err)
		}
	default:
		return cverrors.UserError{Message: fmt.Sprintf("unknown credential type '%s'", v.Kind)}
	}

	return r.store.Upsert(record, false)
}

// Load returns the credential value for a recorded profile. A record whose
// secret store entry is gone means the config and store have drifted apart.
func (r *Repository) Load(name string) (Value, error) {
	record, err := r.store.Get(name)
	if err != nil {
		return Value{}, err
	}

	switch record.CredentialType {
	case vault.TypeAPIKey:
		secret, err := r.backend.Get(apiKeyKey(name))
		if err != nil {
			if errors.Is(err, secretstore.ErrNotFound) {
				return Value{}, cverrors.CredentialMissingError{Profile: name}
			}
			return Value{}, fmt.Errorf("loading API key for profile '%s': %w", name, err)
		}
		return NewAPIKey(string(secret)), nil

	case vault.TypeOAuth:
		access, err := r.backend.Get(oauthAccessKey(name))
		if err != nil {
			if errors.Is(err, secretstore.ErrNotFound) {
				return Value{}, cverrors.CredentialMissingError{Profile: name}
			}
			return Value{}, fmt.Errorf("loading access token for profile '%s': %w", name, err)
		}

		var refresh []byte
		refresh, err = r.backend.Get(oauthRefreshKey(name))
		if err != nil && !errors.Is(err, secretstore.ErrNotFound) {
			return Value{}, fmt.Errorf("loading refresh token for profile '%s': %w", name, err)
		}

		var expiresAt time.Time
		if record.ExpiresAt != nil {
			expiresAt = *record.ExpiresAt
		}
		return NewOAuth(string(access), string(refresh), expiresAt), nil
	}

	return Value{}, cverrors.UserError{
		Message: fmt.Sprintf("profile '%s' has unknown credential type '%s'", name, record.CredentialType),
	}
}

// Delete removes every secret store entry for the profile and then its record.
// If only part of that succeeds the caller gets a PartialRemovalError, not a
// silent success.
func (r *Repository) Delete(name string) error {
	if _, err := r.store.Get(name); err != nil {
		return err
	}

	var failures []error
	for _, key := range Keys(name) {
		if _, err := r.backend.Delete(key); err != nil {
			failures = append(failures, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	if err := r.store.Remove(name); err != nil {
		failures = append(failures, fmt.Errorf("remove record: %w", err))
	}

	if len(failures) > 0 {
		return cverrors.PartialRemovalError{Profile: name, Errs: failures}
	}
	return nil
}

// TouchLastUsed updates the profile's last-used timestamp. Best effort: a
// failure here never aborts the caller's primary operation.
func (r *Repository) TouchLastUsed(name string) {
	record, err := r.store.Get(name)
	if err != nil {
		r.logger.Debug("touch last-used for %s: %v", name, err)
		return
	}
	record.Touch()
	if err := r.store.Upsert(record, false); err != nil {
		r.logger.Debug("touch last-used for %s: %v", name, err)
	}
}

// RecordStore exposes the underlying profile record store.
func (r *Repository) RecordStore() *vault.Store {
	return r.store
}
