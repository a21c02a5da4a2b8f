package models

import (
	"errors"
	"time"
)

// Token is the persisted OAuth2 token record. It is replaced wholesale on
// every refresh.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expires      time.Time `json:"expires"`
	Scopes       []string  `json:"scopes"`
}

// Expired reports whether the token expired strictly before now
func (t *Token) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}

// Validate checks the invariants of a decoded record
func (t *Token) Validate() error {
	if t.AccessToken == "" {
		return errors.New("access_token is empty")
	}
	if t.Expires.IsZero() {
		return errors.New("expires is missing")
	}
	return nil
}
