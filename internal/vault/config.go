package vault

import (
	"fmt"
	"time"

	cverrors "github.com/systmms/credvault/internal/errors"
)

// ConfigVersion is the current schema version of the vault config file.
const ConfigVersion = 1

// CredentialType distinguishes the two credential kinds a profile can hold.
// Storage keys, display, and refresh eligibility all switch exhaustively on it.
type CredentialType string

const (
	TypeAPIKey CredentialType = "api_key"
	TypeOAuth  CredentialType = "oauth"
)

// Profile is the persisted metadata for one named credential. It never holds
// secret material; ExpiresAt mirrors the secret-store-held expiry so listing
// does not require a secret read.
type Profile struct {
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description,omitempty"`
	CredentialType CredentialType `yaml:"credential_type"`
	CreatedAt      time.Time      `yaml:"created_at"`
	LastUsed       *time.Time     `yaml:"last_used,omitempty"`
	ExpiresAt      *time.Time     `yaml:"expires_at,omitempty"`
}

// Touch updates the last-used timestamp.
func (p *Profile) Touch() {
	now := time.Now().UTC()
	p.LastUsed = &now
}

// Validate checks the record's internal consistency: expiry metadata belongs
// to OAuth profiles only.
func (p Profile) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	switch p.CredentialType {
	case TypeAPIKey:
		if p.ExpiresAt != nil {
			return cverrors.UserError{
				Message: fmt.Sprintf("profile '%s' is an API key profile but has an expiry", p.Name),
			}
		}
	case TypeOAuth:
		if p.ExpiresAt == nil {
			return cverrors.UserError{
				Message: fmt.Sprintf("profile '%s' is an OAuth profile but has no expiry", p.Name),
			}
		}
	default:
		return cverrors.UserError{
			Message:    fmt.Sprintf("profile '%s' has unknown credential type '%s'", p.Name, p.CredentialType),
			Suggestion: "Expected 'api_key' or 'oauth'",
		}
	}
	return nil
}

// Config is the on-disk vault configuration. Profile order is preserved for
// listing.
type Config struct {
	Version        int       `yaml:"version"`
	DefaultProfile string    `yaml:"default_profile,omitempty"`
	Profiles       []Profile `yaml:"profiles"`
}

// NewConfig returns an empty config at the current schema version.
func NewConfig() *Config {
	return &Config{Version: ConfigVersion}
}

// Find returns the profile with the given name, or nil.
func (c *Config) Find(name string) *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

// Exists reports whether a profile with the given name is recorded.
func (c *Config) Exists(name string) bool {
	return c.Find(name) != nil
}

// Add appends a new profile, failing on duplicate names.
func (c *Config) Add(p Profile) error {
	if c.Exists(p.Name) {
		return cverrors.ProfileExistsError{Name: p.Name}
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// Remove deletes the named profile. Removing the default profile clears the
// default pointer.
func (c *Config) Remove(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			if c.DefaultProfile == name {
				c.DefaultProfile = ""
			}
			return nil
		}
	}
	return cverrors.ProfileNotFoundError{Name: name}
}

// ValidateName enforces the profile naming rules: non-empty, at most 64
// characters, alphanumerics plus hyphen and underscore.
func ValidateName(name string) error {
	if name == "" {
		return cverrors.UserError{
			Message:    "profile name is empty",
			Suggestion: "Pick a short name like 'work' or 'personal'",
		}
	}
	if len(name) > 64 {
		return cverrors.UserError{
			Message:    fmt.Sprintf("profile name '%s…' is too long (max 64 characters)", name[:16]),
			Suggestion: "Pick a shorter name",
		}
	}
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return cverrors.UserError{
			Message:    fmt.Sprintf("profile name '%s' contains invalid characters", name),
			Suggestion: "Use letters, digits, '-' and '_' only",
		}
	}
	return nil
}
