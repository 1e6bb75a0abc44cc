// Package session transactionally switches a foreign credential store (one
// read by a delegated child process, not by credvault) to a chosen credential
// for exactly the duration of that process.
package session

import (
	"errors"

	cverrors "github.com/systmms/credvault/internal/errors"
	"github.com/systmms/credvault/internal/logging"
)

// ForeignStore is the narrow port onto another application's credential store.
// Payloads are opaque: the controller backs up and restores bytes without
// interpreting them.
type ForeignStore interface {
	// GetActive returns the store's current active entry, or false if none.
	GetActive() ([]byte, bool, error)
	// SetActive replaces the store's active entry.
	SetActive(payload []byte) error
	// ClearActive removes the active entry. Clearing an absent entry is not
	// an error.
	ClearActive() error
}

// Controller runs the backup/install/execute/restore protocol.
type Controller struct {
	store  ForeignStore
	logger *logging.Logger
}

// NewController creates a controller over the given foreign store.
func NewController(store ForeignStore, logger *logging.Logger) *Controller {
	return &Controller{
		store:  store,
		logger: logger,
	}
}

// Run installs payload as the foreign store's active entry, runs fn, and
// restores the prior state on every exit path out of fn, including errors.
// The restore is wired up with defer the moment the backup exists, so nothing
// between install and return can skip it.
//
// fn's exit code and error pass through unchanged; a restore failure is
// joined onto fn's error, never substituted for it.
func (c *Controller) Run(payload []byte, fn func() (int, error)) (exitCode int, err error) {
	// Phase 1: backup. Without a verified backup nothing is mutated.
	backup, existed, backupErr := c.store.GetActive()
	if backupErr != nil {
		return 0, cverrors.SwitchError{Phase: cverrors.PhaseBackup, Err: backupErr}
	}
	c.logger.Debug("session switch: backed up foreign store (entry present: %v)", existed)

	// A failed install leaves no visible mutation, so there is nothing to
	// restore; the deferred restore only arms once the install succeeded.
	installed := false

	defer func() {
		if !installed {
			return
		}
		var restoreErr error
		if existed {
			restoreErr = c.store.SetActive(backup)
		} else {
			restoreErr = c.store.ClearActive()
		}
		if restoreErr != nil {
			wrapped := cverrors.SwitchError{Phase: cverrors.PhaseRestore, Err: restoreErr}
			if err != nil {
				err = errors.Join(err, wrapped)
			} else {
				err = wrapped
			}
			return
		}
		c.logger.Debug("session switch: foreign store restored")
	}()

	// Phase 2: install.
	if installErr := c.store.SetActive(payload); installErr != nil {
		return 0, cverrors.SwitchError{Phase: cverrors.PhaseInstall, Err: installErr}
	}
	installed = true

	// Phase 3: execute. Phase 4 (restore) runs via the deferred func above.
	return fn()
}
