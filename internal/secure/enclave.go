// Package secure provides memory-safe handling of credential material between
// loading it from the secret store and handing it to a child process.
//
// It wraps memguard: values are encrypted at rest in memory, mlocked against
// swapping where the platform allows, and wiped on destruction. Callers open
// a buffer only for the brief window the plaintext is needed and destroy the
// locked view immediately after.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer holds one secret value in a memguard enclave.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer creates a protected buffer from secret bytes. The input is
// copied into the protected region; the caller should not reuse it.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// NewSecureBufferFromString creates a protected buffer from a secret string.
func NewSecureBufferFromString(s string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(s))
}

// Open decrypts the buffer into a locked view. The caller MUST call Destroy()
// on the returned LockedBuffer as soon as the plaintext has been used.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return s.enclave.Open()
}

// Destroy marks the buffer as unusable. Idempotent; after Destroy, Open
// returns an empty view. For full cleanup of all protected memory at exit,
// call memguard.Purge() from main.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.enclave = nil
	s.destroyed = true
}
