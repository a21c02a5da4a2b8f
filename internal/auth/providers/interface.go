package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider defines the OAuth2 operations the token lifecycle needs
type Provider interface {
	// GetAuthURL returns the authorization URL for the given state, with the
	// S256 challenge derived from codeVerifier
	GetAuthURL(state, codeVerifier string) string

	// ExchangeCode exchanges an authorization code and its PKCE verifier for tokens
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error)

	// RefreshToken exchanges a refresh token for a new token
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}
