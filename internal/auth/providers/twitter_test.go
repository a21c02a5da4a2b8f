package providers

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(tokenURL string) *config.Config {
	return &config.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Twitter: config.TwitterConfig{
			AuthURL:     "https://twitter.example/i/oauth2/authorize",
			TokenURL:    tokenURL,
			RedirectURL: "https://twitter.example",
		},
		HTTP: config.HTTPConfig{Timeout: 5 * time.Second},
	}
}

func TestNewTwitterProvider_MissingCredentials(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.ClientID = ""
	_, err := NewTwitterProvider(cfg)
	assert.ErrorIs(t, err, errs.ErrMissingConfig)

	cfg = testConfig("http://unused")
	cfg.ClientSecret = ""
	_, err = NewTwitterProvider(cfg)
	assert.ErrorIs(t, err, errs.ErrMissingConfig)
	assert.Contains(t, err.Error(), "RSN_CLIENT_SECRET")
}

func TestTwitterProvider_GetAuthURL(t *testing.T) {
	p, err := NewTwitterProvider(testConfig("http://unused"))
	require.NoError(t, err)

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	raw := p.GetAuthURL("state-123", verifier)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	sum := sha256.Sum256([]byte(verifier))
	assert.Equal(t, "twitter.example", u.Host)
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "https://twitter.example", q.Get("redirect_uri"))
	assert.Equal(t, "tweet.read tweet.write users.read offline.access", q.Get("scope"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), q.Get("code_challenge"))
}

func TestTwitterProvider_Exchanges(t *testing.T) {
	var forms []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "client credentials must be sent in the header")
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		forms = append(forms, r.PostForm)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + r.PostForm.Get("grant_type"),
			"refresh_token": "refresh-next",
			"token_type":    "bearer",
			"expires_in":    7200,
		})
	}))
	defer server.Close()

	p, err := NewTwitterProvider(testConfig(server.URL))
	require.NoError(t, err)

	tok, err := p.ExchangeCode(context.Background(), "the-code", "the-verifier")
	require.NoError(t, err)
	assert.Equal(t, "access-authorization_code", tok.AccessToken)
	assert.Equal(t, "refresh-next", tok.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), tok.Expiry, time.Minute)

	tok, err = p.RefreshToken(context.Background(), "refresh-old")
	require.NoError(t, err)
	assert.Equal(t, "access-refresh_token", tok.AccessToken)
	assert.Equal(t, "refresh-next", tok.RefreshToken)

	require.Len(t, forms, 2)
	assert.Equal(t, "authorization_code", forms[0].Get("grant_type"))
	assert.Equal(t, "the-code", forms[0].Get("code"))
	assert.Equal(t, "the-verifier", forms[0].Get("code_verifier"))
	assert.Equal(t, "https://twitter.example", forms[0].Get("redirect_uri"))
	assert.Equal(t, "refresh_token", forms[1].Get("grant_type"))
	assert.Equal(t, "refresh-old", forms[1].Get("refresh_token"))
}

func TestTwitterProvider_RefreshWithoutRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new","token_type":"bearer","expires_in":7200}`))
	}))
	defer server.Close()

	p, err := NewTwitterProvider(testConfig(server.URL))
	require.NoError(t, err)

	tok, err := p.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)
	assert.Empty(t, tok.RefreshToken, "the spent refresh token must not be handed back")
}

func TestTwitterProvider_ExchangeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_request","error_description":"Value passed for the authorization code was invalid."}`))
	}))
	defer server.Close()

	p, err := NewTwitterProvider(testConfig(server.URL))
	require.NoError(t, err)

	_, err = p.ExchangeCode(context.Background(), "bad", "verifier")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid_request"))
}
