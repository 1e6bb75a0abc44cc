package oauth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cverrors "github.com/systmms/credvault/internal/errors"
)

func TestParseClaudeCredentials(t *testing.T) {
	expiresAt := time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC)
	doc := []byte(`{
		"claudeAiOauth": {
			"accessToken": "access-123",
			"refreshToken": "refresh-456",
			"expiresAt": ` + jsonInt(expiresAt.UnixMilli()) + `,
			"scopes": ["user:inference"],
			"subscriptionType": "max"
		}
	}`)

	b, err := ParseClaudeCredentials(doc)
	require.NoError(t, err)
	assert.Equal(t, "access-123", b.AccessToken)
	assert.Equal(t, "refresh-456", b.RefreshToken)
	assert.True(t, b.ExpiresAt.Equal(expiresAt))
	assert.Equal(t, []string{"user:inference"}, b.Scopes)
	assert.Equal(t, "max", b.SubscriptionType)
}

func TestParseClaudeCredentialsBadInput(t *testing.T) {
	var invalid cverrors.InvalidTokenBundleError

	_, err := ParseClaudeCredentials(nil)
	assert.ErrorAs(t, err, &invalid)

	_, err = ParseClaudeCredentials([]byte("{not json"))
	assert.ErrorAs(t, err, &invalid)
}

func TestBundleValidate(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	var invalid cverrors.InvalidTokenBundleError

	t.Run("valid", func(t *testing.T) {
		b := Bundle{AccessToken: "a", ExpiresAt: now.Add(time.Hour)}
		assert.NoError(t, b.Validate(now))
	})

	t.Run("empty access token", func(t *testing.T) {
		b := Bundle{ExpiresAt: now.Add(time.Hour)}
		assert.ErrorAs(t, b.Validate(now), &invalid)
	})

	t.Run("missing expiry", func(t *testing.T) {
		b := Bundle{AccessToken: "a"}
		assert.ErrorAs(t, b.Validate(now), &invalid)
	})

	t.Run("already expired", func(t *testing.T) {
		b := Bundle{AccessToken: "a", ExpiresAt: now.Add(-time.Minute)}
		assert.ErrorAs(t, b.Validate(now), &invalid)
	})
}

func TestMarshalClaudeCredentialsRoundTrip(t *testing.T) {
	in := Bundle{
		AccessToken:      "access",
		RefreshToken:     "refresh",
		ExpiresAt:        time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC),
		Scopes:           []string{"user:inference", "user:profile"},
		SubscriptionType: "pro",
	}

	data, err := MarshalClaudeCredentials(in)
	require.NoError(t, err)

	out, err := ParseClaudeCredentials(data)
	require.NoError(t, err)
	assert.Equal(t, in.AccessToken, out.AccessToken)
	assert.Equal(t, in.RefreshToken, out.RefreshToken)
	assert.True(t, out.ExpiresAt.Equal(in.ExpiresAt))
	assert.Equal(t, in.Scopes, out.Scopes)
	assert.Equal(t, in.SubscriptionType, out.SubscriptionType)
}

func TestMarshalClaudeCredentialsDefaults(t *testing.T) {
	data, err := MarshalClaudeCredentials(Bundle{
		AccessToken: "access",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	body := doc["claudeAiOauth"]
	assert.Equal(t, "unknown", body["subscriptionType"])
	assert.Len(t, body["scopes"], 3)
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
