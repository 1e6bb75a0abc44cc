package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	cverrors "github.com/systmms/credvault/internal/errors"
)

const configFileName = "config.yaml"

// Store persists the vault config. Every mutating call rewrites the file
// atomically (write-temp-then-rename) so a crash mid-write cannot leave a
// half-written config behind.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user config directory for credvault.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", cverrors.UserError{
			Message:    "could not determine the user config directory",
			Suggestion: "Set HOME (or XDG_CONFIG_HOME) or pass --config-dir",
			Err:        err,
		}
	}
	return filepath.Join(base, "credvault"), nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// ConfigPath returns the path of the vault config file.
func (s *Store) ConfigPath() string {
	return filepath.Join(s.dir, configFileName)
}

// Load reads the vault config. A missing file yields a fresh empty config;
// an unparseable file is a hard error and is never reset.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, cverrors.UserError{
			Message: fmt.Sprintf("failed to read vault config at %s", s.ConfigPath()),
			Err:     err,
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cverrors.ConfigCorruptError{Path: s.ConfigPath(), Err: err}
	}
	if cfg.Version > ConfigVersion {
		return nil, cverrors.ConfigCorruptError{
			Path: s.ConfigPath(),
			Err:  fmt.Errorf("config version %d is newer than supported version %d", cfg.Version, ConfigVersion),
		}
	}
	return &cfg, nil
}

// Save writes the config atomically with owner-only permissions.
func (s *Store) Save(cfg *Config) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return cverrors.UserError{
			Message: fmt.Sprintf("failed to create config directory %s", s.dir),
			Err:     err,
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return cverrors.UserError{Message: "failed to serialize vault config", Err: err}
	}

	return WriteFileAtomic(s.ConfigPath(), data, 0o600)
}

// List returns all profile records in insertion order.
func (s *Store) List() ([]Profile, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	return cfg.Profiles, nil
}

// Get returns the named profile record.
func (s *Store) Get(name string) (Profile, error) {
	cfg, err := s.Load()
	if err != nil {
		return Profile{}, err
	}
	p := cfg.Find(name)
	if p == nil {
		return Profile{}, cverrors.ProfileNotFoundError{Name: name}
	}
	return *p, nil
}

// Upsert inserts or replaces a profile record. With createOnly set, an
// existing name is a conflict.
func (s *Store) Upsert(p Profile, createOnly bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	cfg, err := s.Load()
	if err != nil {
		return err
	}

	if existing := cfg.Find(p.Name); existing != nil {
		if createOnly {
			return cverrors.ProfileExistsError{Name: p.Name}
		}
		*existing = p
	} else if err := cfg.Add(p); err != nil {
		return err
	}

	return s.Save(cfg)
}

// Remove deletes the named profile record.
func (s *Store) Remove(name string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if err := cfg.Remove(name); err != nil {
		return err
	}
	return s.Save(cfg)
}

// Default returns the configured default profile name, or "" if unset.
func (s *Store) Default() (string, error) {
	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	return cfg.DefaultProfile, nil
}

// SetDefault points the default at an existing profile. An empty name
// clears the default.
func (s *Store) SetDefault(name string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if name != "" && !cfg.Exists(name) {
		return cverrors.ProfileNotFoundError{Name: name}
	}
	cfg.DefaultProfile = name
	return s.Save(cfg)
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return cverrors.UserError{
			Message: fmt.Sprintf("failed to create temp file in %s", dir),
			Err:     err,
		}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return cverrors.UserError{Message: "failed to set file permissions", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return cverrors.UserError{Message: fmt.Sprintf("failed to write %s", path), Err: err}
	}
	if err := tmp.Close(); err != nil {
		return cverrors.UserError{Message: fmt.Sprintf("failed to write %s", path), Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return cverrors.UserError{Message: fmt.Sprintf("failed to replace %s", path), Err: err}
	}
	return nil
}
