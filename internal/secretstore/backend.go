// Package secretstore abstracts the platform secret store behind a narrow
// get/set/delete port. Keys are namespaced strings and never contain secret
// material themselves.
package secretstore

import (
	"errors"
	"os"
	"runtime"
	"sync"
)

// ErrNotFound is returned by Get when no value exists for a key.
var ErrNotFound = errors.New("secret not found")

// Backend is the secret store port. Implementations hold opaque byte values
// under namespaced string keys.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) (bool, error)
}

// Open selects a backend for the given config directory. The OS keychain is
// preferred; the encrypted-file store is used on headless systems or when
// CREDVAULT_BACKEND=file is set.
func Open(dir string) Backend {
	switch os.Getenv("CREDVAULT_BACKEND") {
	case "file":
		return NewFile(dir)
	case "keyring":
		return NewKeyring()
	}
	if keychainAvailable() {
		return NewKeyring()
	}
	return NewFile(dir)
}

func keychainAvailable() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	}
	// Linux needs a running Secret Service, which needs a session bus.
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	return true
}

// Memory is an in-process Backend used by tests and as the port's reference
// implementation.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	return nil
}

func (m *Memory) Delete(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	delete(m.values, key)
	return ok, nil
}

// Keys returns all stored keys. Test helper.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}
