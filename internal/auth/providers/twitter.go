package providers

import (
	"context"
	"net/http"

	"github.com/brizzai/subcount-bot/internal/auth/constants"
	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"golang.org/x/oauth2"
)

// TwitterProvider talks to the X (Twitter) OAuth 2.0 endpoints as a
// confidential client
type TwitterProvider struct {
	oauth2Config *oauth2.Config
	httpClient   *http.Client
}

// NewTwitterProvider builds the provider from the client credentials and
// endpoint settings in cfg
func NewTwitterProvider(cfg *config.Config) (*TwitterProvider, error) {
	if cfg.ClientID == "" {
		return nil, errs.MissingConfig("client_id", config.EnvPrefix+"_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		return nil, errs.MissingConfig("client_secret", config.EnvPrefix+"_CLIENT_SECRET")
	}

	return &TwitterProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.Twitter.AuthURL,
				TokenURL:  cfg.Twitter.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			RedirectURL: cfg.Twitter.RedirectURL,
			Scopes:      constants.AuthorizeScopes,
		},
		httpClient: &http.Client{Timeout: cfg.HTTP.Timeout},
	}, nil
}

func (p *TwitterProvider) GetAuthURL(state, codeVerifier string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.S256ChallengeOption(codeVerifier))
}

func (p *TwitterProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	return p.oauth2Config.Exchange(p.withClient(ctx), code, oauth2.VerifierOption(codeVerifier))
}

// RefreshToken exchanges refreshToken for a new token. The returned
// RefreshToken is only what the server sent: oauth2 would otherwise carry
// the old, already spent one over.
func (p *TwitterProvider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	token, err := p.oauth2Config.TokenSource(p.withClient(ctx), &oauth2.Token{
		RefreshToken: refreshToken,
	}).Token()
	if err != nil {
		return nil, err
	}
	if granted, _ := token.Extra("refresh_token").(string); granted == "" {
		token.RefreshToken = ""
	}
	return token, nil
}

// withClient makes the oauth2 package use the provider's HTTP client
func (p *TwitterProvider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}
