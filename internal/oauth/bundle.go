package oauth

import (
	"encoding/json"
	"time"

	cverrors "github.com/systmms/credvault/internal/errors"
)

// Bundle is an imported OAuth token set: the shape of the credentials the
// Claude app keeps in its own keychain entry.
type Bundle struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	Scopes           []string
	SubscriptionType string
}

// Validate checks that the bundle is importable: a non-empty access token and
// a parseable expiry that is still in the future.
func (b Bundle) Validate(now time.Time) error {
	if b.AccessToken == "" {
		return cverrors.InvalidTokenBundleError{Reason: "access token is empty"}
	}
	if b.ExpiresAt.IsZero() {
		return cverrors.InvalidTokenBundleError{Reason: "expiry is missing or unparseable"}
	}
	if !b.ExpiresAt.After(now) {
		return cverrors.InvalidTokenBundleError{Reason: "token is already expired"}
	}
	return nil
}

// claudeCredentials is the JSON document the Claude app stores under its
// keychain entry. Expiry is milliseconds since the epoch.
type claudeCredentials struct {
	ClaudeAiOauth claudeOauthBody `json:"claudeAiOauth"`
}

type claudeOauthBody struct {
	AccessToken      string   `json:"accessToken"`
	RefreshToken     string   `json:"refreshToken"`
	ExpiresAt        int64    `json:"expiresAt"`
	Scopes           []string `json:"scopes"`
	SubscriptionType string   `json:"subscriptionType"`
}

// defaultScopes is what the Claude app grants its own tokens; used when a
// bundle carries no scope list of its own.
var defaultScopes = []string{"user:inference", "user:profile", "user:sessions:claude_code"}

// ParseClaudeCredentials decodes the Claude app's credential document into a
// Bundle.
func ParseClaudeCredentials(data []byte) (Bundle, error) {
	if len(data) == 0 {
		return Bundle{}, cverrors.InvalidTokenBundleError{Reason: "credential document is empty"}
	}

	var doc claudeCredentials
	if err := json.Unmarshal(data, &doc); err != nil {
		return Bundle{}, cverrors.InvalidTokenBundleError{Reason: "credential document is not valid JSON: " + err.Error()}
	}

	body := doc.ClaudeAiOauth
	b := Bundle{
		AccessToken:      body.AccessToken,
		RefreshToken:     body.RefreshToken,
		Scopes:           body.Scopes,
		SubscriptionType: body.SubscriptionType,
	}
	if body.ExpiresAt > 0 {
		b.ExpiresAt = time.UnixMilli(body.ExpiresAt).UTC()
	}
	return b, nil
}

// MarshalClaudeCredentials encodes a bundle back into the Claude app's
// document format, for installation into its keychain entry.
func MarshalClaudeCredentials(b Bundle) ([]byte, error) {
	scopes := b.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	subscription := b.SubscriptionType
	if subscription == "" {
		subscription = "unknown"
	}
	return json.Marshal(claudeCredentials{
		ClaudeAiOauth: claudeOauthBody{
			AccessToken:      b.AccessToken,
			RefreshToken:     b.RefreshToken,
			ExpiresAt:        b.ExpiresAt.UnixMilli(),
			Scopes:           scopes,
			SubscriptionType: subscription,
		},
	})
}
