package secretstore

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/systmms/credvault/internal/vault"
)

const (
	secretsFileName = "secrets.enc"
	keyFileName     = "store.key"
)

// FileBackend is the encrypted-file fallback for systems without a native
// secret store. Values are kept in a single secretbox-sealed JSON blob next to
// the vault config; the sealing key lives in an owner-only key file.
//
// This trades keychain-grade protection for portability: the key file guards
// against other users, not against root or the owner's own processes.
type FileBackend struct {
	dir string
}

// NewFile creates a file backend rooted at the given directory.
func NewFile(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) Get(key string) ([]byte, error) {
	values, err := b.load()
	if err != nil {
		return nil, err
	}
	v, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (b *FileBackend) Set(key string, value []byte) error {
	values, err := b.load()
	if err != nil {
		return err
	}
	values[key] = value
	return b.save(values)
}

func (b *FileBackend) Delete(key string) (bool, error) {
	values, err := b.load()
	if err != nil {
		return false, err
	}
	_, ok := values[key]
	if !ok {
		return false, nil
	}
	delete(values, key)
	return true, b.save(values)
}

func (b *FileBackend) secretsPath() string {
	return filepath.Join(b.dir, secretsFileName)
}

func (b *FileBackend) load() (map[string][]byte, error) {
	data, err := os.ReadFile(b.secretsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]byte{}, nil
		}
		return nil, err
	}
	if len(data) < 24 {
		return nil, fmt.Errorf("secret store file %s is truncated", b.secretsPath())
	}

	key, err := b.loadKey()
	if err != nil {
		return nil, err
	}

	var nonce [24]byte
	copy(nonce[:], data[:24])
	plain, ok := secretbox.Open(nil, data[24:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("secret store file %s could not be decrypted (wrong or replaced key file?)", b.secretsPath())
	}

	var values map[string][]byte
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, fmt.Errorf("secret store file %s holds invalid data: %w", b.secretsPath(), err)
	}
	return values, nil
}

func (b *FileBackend) save(values map[string][]byte) error {
	key, err := b.loadKey()
	if err != nil {
		return err
	}

	plain, err := json.Marshal(values)
	if err != nil {
		return err
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, key)

	return vault.WriteFileAtomic(b.secretsPath(), sealed, 0o600)
}

// loadKey reads the sealing key, generating one on first use.
func (b *FileBackend) loadKey() (*[32]byte, error) {
	path := filepath.Join(b.dir, keyFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		var key [32]byte
		if _, err := rand.Read(key[:]); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(b.dir, 0o700); err != nil {
			return nil, err
		}
		if err := vault.WriteFileAtomic(path, key[:], 0o600); err != nil {
			return nil, err
		}
		return &key, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("key file %s has unexpected size %d", path, len(data))
	}

	var key [32]byte
	copy(key[:], data)
	return &key, nil
}
