package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorFormatting(t *testing.T) {
	err := UserError{
		Message:    "Failed to load vault config",
		Details:    "permission denied",
		Suggestion: "Check file permissions on ~/.config/credvault",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Failed to load vault config")
	assert.Contains(t, msg, "Details: permission denied")
	assert.Contains(t, msg, "Try: Check file permissions")
}

func TestUserErrorUnwrap(t *testing.T) {
	inner := stderrors.New("boom")
	err := UserError{Message: "outer", Err: inner}

	assert.ErrorIs(t, error(err), inner)
}

func TestProfileErrors(t *testing.T) {
	assert.Contains(t, ProfileNotFoundError{Name: "work"}.Error(), "profile 'work' not found")
	assert.Contains(t, ProfileExistsError{Name: "work"}.Error(), "already exists")
}

func TestPartialRemovalListsCauses(t *testing.T) {
	err := PartialRemovalError{
		Profile: "work",
		Errs: []error{
			stderrors.New("keychain delete failed"),
			stderrors.New("config save failed"),
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "partially removed")
	assert.Contains(t, msg, "keychain delete failed")
	assert.Contains(t, msg, "config save failed")
}

func TestRefreshDeferredCarriesCause(t *testing.T) {
	cause := stderrors.New("exchange timed out")
	err := RefreshDeferredError{
		Profile:   "work",
		ExpiresAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Err:       cause,
	}

	assert.Contains(t, err.Error(), "using current token until 2026-03-01T12:00:00Z")
	assert.ErrorIs(t, error(err), cause)

	var deferred RefreshDeferredError
	assert.True(t, stderrors.As(fmt.Errorf("wrapped: %w", error(err)), &deferred))
	assert.Equal(t, "work", deferred.Profile)
}

func TestSwitchErrorPhases(t *testing.T) {
	cause := stderrors.New("keyring locked")

	backup := SwitchError{Phase: PhaseBackup, Err: cause}
	assert.Contains(t, backup.Error(), "nothing was changed")

	install := SwitchError{Phase: PhaseInstall, Err: cause}
	assert.Contains(t, install.Error(), "install credential")

	restore := SwitchError{Phase: PhaseRestore, Err: cause}
	assert.Contains(t, restore.Error(), "restore the Claude keychain entry")
	assert.ErrorIs(t, error(restore), cause)
}
