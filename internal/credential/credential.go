// Package credential maps profile names to typed credential values, composing
// the secret store backend with the vault's profile records.
package credential

import (
	"time"

	"github.com/systmms/credvault/internal/vault"
)

// Value is a credential loaded into memory. It is a tagged union over the two
// credential kinds: exactly the fields for its Kind are meaningful. Values are
// never persisted outside the secret store backend.
type Value struct {
	Kind vault.CredentialType

	// API key material (Kind == TypeAPIKey)
	APIKey string

	// OAuth material (Kind == TypeOAuth)
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NewAPIKey wraps a static API key.
func NewAPIKey(secret string) Value {
	return Value{Kind: vault.TypeAPIKey, APIKey: secret}
}

// NewOAuth wraps an OAuth token. The refresh token may be empty.
func NewOAuth(accessToken, refreshToken string, expiresAt time.Time) Value {
	return Value{
		Kind:         vault.TypeOAuth,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
}

// Bearer returns the value injected into the child process environment: the
// API key or the OAuth access token, interchangeably.
func (v Value) Bearer() string {
	switch v.Kind {
	case vault.TypeAPIKey:
		return v.APIKey
	case vault.TypeOAuth:
		return v.AccessToken
	}
	return ""
}

// Secret store key layout. Keys are namespaced per profile and credential
// kind; the OAuth refresh token gets its own slot because it may be absent.
func apiKeyKey(name string) string {
	return "vault:" + name + ":apikey"
}

func oauthAccessKey(name string) string {
	return "vault:" + name + ":oauth-access"
}

func oauthRefreshKey(name string) string {
	return "vault:" + name + ":oauth-refresh"
}

// Keys returns every secret store key a profile may own, across both kinds.
// Delete walks all of them so a type change never strands an entry.
func Keys(name string) []string {
	return []string{apiKeyKey(name), oauthAccessKey(name), oauthRefreshKey(name)}
}
