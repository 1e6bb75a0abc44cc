package errors

import (
	"fmt"
	"strings"
	"time"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ProfileNotFoundError indicates a profile name that has no record in the vault config.
type ProfileNotFoundError struct {
	Name string
}

func (e ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile '%s' not found\n  💡 Try: credvault list", e.Name)
}

// ProfileExistsError indicates a create-only operation hit an existing name.
type ProfileExistsError struct {
	Name string
}

func (e ProfileExistsError) Error() string {
	return fmt.Sprintf("profile '%s' already exists\n  💡 Try: credvault remove %s, or pick another name", e.Name, e.Name)
}

// ConfigCorruptError indicates the persisted vault config could not be parsed.
// The file is never silently reset; the user has to repair or delete it.
type ConfigCorruptError struct {
	Path string
	Err  error
}

func (e ConfigCorruptError) Error() string {
	return fmt.Sprintf("vault config at %s is corrupt: %v\n  💡 Try: repair the file by hand, it will not be overwritten", e.Path, e.Err)
}

func (e ConfigCorruptError) Unwrap() error {
	return e.Err
}

// CredentialMissingError indicates config/secret-store drift: the profile record
// exists but the secret store holds no value for it.
type CredentialMissingError struct {
	Profile string
}

func (e CredentialMissingError) Error() string {
	return fmt.Sprintf("profile '%s' exists but its credential is missing from the secret store\n  💡 Try: credvault remove %s && credvault add %s", e.Profile, e.Profile, e.Profile)
}

// PartialRemovalError indicates a profile removal that deleted some but not all
// of its state (secret-store entries vs. the config record).
type PartialRemovalError struct {
	Profile string
	Errs    []error
}

func (e PartialRemovalError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("profile '%s' was only partially removed: %s\n  💡 Try: credvault remove %s to finish cleanup", e.Profile, strings.Join(msgs, "; "), e.Profile)
}

// InvalidTokenBundleError indicates a malformed OAuth import payload.
type InvalidTokenBundleError struct {
	Reason string
}

func (e InvalidTokenBundleError) Error() string {
	return fmt.Sprintf("invalid OAuth token bundle: %s\n  💡 Try: log in with the Claude app again, then re-run the import", e.Reason)
}

// CredentialExpiredError indicates an OAuth token past expiry with no usable
// refresh path.
type CredentialExpiredError struct {
	Profile string
}

func (e CredentialExpiredError) Error() string {
	return fmt.Sprintf("OAuth token for profile '%s' has expired and could not be refreshed\n  💡 Try: claude /login, then credvault import --profile %s", e.Profile, e.Profile)
}

// RefreshDeferredError is a non-fatal warning: the refresh exchange failed but
// the previous token is still usable. The caller proceeds with the stale token
// and surfaces the warning.
type RefreshDeferredError struct {
	Profile   string
	ExpiresAt time.Time
	Err       error
}

func (e RefreshDeferredError) Error() string {
	return fmt.Sprintf("token refresh for profile '%s' failed, using current token until %s: %v", e.Profile, e.ExpiresAt.Format(time.RFC3339), e.Err)
}

func (e RefreshDeferredError) Unwrap() error {
	return e.Err
}

// DanglingReferenceError indicates a marker file naming a profile that does not
// exist in the vault config.
type DanglingReferenceError struct {
	Profile string
	Marker  string
}

func (e DanglingReferenceError) Error() string {
	return fmt.Sprintf("marker file %s names unknown profile '%s'\n  💡 Try: credvault add %s, or fix the marker file", e.Marker, e.Profile, e.Profile)
}

// SwitchPhase identifies which phase of the session-switch protocol failed.
type SwitchPhase string

const (
	PhaseBackup  SwitchPhase = "backup"
	PhaseInstall SwitchPhase = "install"
	PhaseRestore SwitchPhase = "restore"
)

// SwitchError indicates a failure in one phase of the backup/install/execute/
// restore protocol around a delegated run. A restore failure is the loudest:
// it leaves the foreign credential store pointing at the wrong credential.
type SwitchError struct {
	Phase SwitchPhase
	Err   error
}

func (e SwitchError) Error() string {
	switch e.Phase {
	case PhaseBackup:
		return fmt.Sprintf("failed to back up the Claude keychain entry, nothing was changed: %v", e.Err)
	case PhaseInstall:
		return fmt.Sprintf("failed to install credential into the Claude keychain entry: %v", e.Err)
	case PhaseRestore:
		return fmt.Sprintf("failed to restore the Claude keychain entry: %v\n  💡 Try: claude /login to re-authenticate the Claude app", e.Err)
	}
	return fmt.Sprintf("session switch failed: %v", e.Err)
}

func (e SwitchError) Unwrap() error {
	return e.Err
}
