package session

import (
	"errors"
	"os"

	"github.com/zalando/go-keyring"

	cverrors "github.com/systmms/credvault/internal/errors"
)

// claudeCodeService is the keychain service the Claude app stores its own
// credentials under; the account is the local username.
const claudeCodeService = "Claude Code-credentials"

// ClaudeCodeStore is the Claude app's credential entry, exposed through the
// ForeignStore port.
type ClaudeCodeStore struct {
	account string
}

// NewClaudeCodeStore opens the Claude app's keychain entry for the current
// user.
func NewClaudeCodeStore() (*ClaudeCodeStore, error) {
	account := os.Getenv("USER")
	if account == "" {
		account = os.Getenv("USERNAME")
	}
	if account == "" {
		return nil, cverrors.UserError{
			Message:    "could not determine the local username for the Claude keychain entry",
			Suggestion: "Set the USER environment variable",
		}
	}
	return &ClaudeCodeStore{account: account}, nil
}

func (s *ClaudeCodeStore) GetActive() ([]byte, bool, error) {
	payload, err := keyring.Get(claudeCodeService, s.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (s *ClaudeCodeStore) SetActive(payload []byte) error {
	return keyring.Set(claudeCodeService, s.account, string(payload))
}

func (s *ClaudeCodeStore) ClearActive() error {
	err := keyring.Delete(claudeCodeService, s.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
