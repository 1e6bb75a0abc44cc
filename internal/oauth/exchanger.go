package oauth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/systmms/credvault/internal/logging"
)

const (
	// tokenEndpoint is the Anthropic OAuth token endpoint used for the
	// refresh-token grant.
	tokenEndpoint = "https://api.anthropic.com/v1/oauth/token"

	// clientID is the public client identifier the Claude app's tokens were
	// issued to.
	clientID = "9d1c250a-e61b-44d9-88ed-5944d1962f5e"
)

// Token is the result of a refresh exchange. RefreshToken may equal the one
// that was sent if the endpoint did not rotate it.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Exchanger turns a refresh token into a fresh token set. The network
// implementation lives behind this port so the lifecycle manager is testable
// without an endpoint.
type Exchanger interface {
	Refresh(ctx context.Context, refreshToken string) (Token, error)
}

type anthropicExchanger struct {
	conf *oauth2.Config
}

// NewAnthropicExchanger creates an Exchanger against the Anthropic token
// endpoint.
func NewAnthropicExchanger() Exchanger {
	return &anthropicExchanger{
		conf: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenEndpoint,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

func (e *anthropicExchanger) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	// TokenSource performs the refresh-token grant and carries the previous
	// refresh token forward when the response omits a new one.
	src := e.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	tok, err := src.Token()
	if err != nil {
		// oauth2 error strings can echo request parameters; scrub the token.
		return Token{}, fmt.Errorf("token exchange failed: %s", logging.Redact(err.Error(), []string{refreshToken}))
	}
	return Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry.UTC(),
	}, nil
}
