package secretstore

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// serviceName is the keychain service all credvault entries live under.
// The namespaced key is used as the keychain account.
const serviceName = "credvault"

type keyringBackend struct{}

// NewKeyring creates a Backend over the OS keychain (macOS Keychain, Linux
// Secret Service, Windows Credential Manager).
func NewKeyring() Backend {
	return &keyringBackend{}
}

func (b *keyringBackend) Get(key string) ([]byte, error) {
	secret, err := keyring.Get(serviceName, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(secret), nil
}

func (b *keyringBackend) Set(key string, value []byte) error {
	return keyring.Set(serviceName, key, string(value))
}

func (b *keyringBackend) Delete(key string) (bool, error) {
	err := keyring.Delete(serviceName, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
