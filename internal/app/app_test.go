package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/subcount-bot/internal/auth"
	"github.com/brizzai/subcount-bot/internal/auth/callback"
	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/publisher"
	"github.com/brizzai/subcount-bot/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pipeTerminal(t *testing.T, plain bool) Terminal {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})
	return Terminal{In: r, Out: io.Discard, Plain: plain}
}

func fullConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		ClientID:         "client",
		ClientSecret:     "secret",
		TokenFile:        filepath.Join(dir, "token.json"),
		PreviousPostFile: filepath.Join(dir, "previous.txt"),
		Twitter: config.TwitterConfig{
			AuthURL:     "https://twitter.com/i/oauth2/authorize",
			TokenURL:    "https://api.twitter.com/2/oauth2/token",
			APIBaseURL:  "https://api.twitter.com",
			RedirectURL: "https://twitter.com",
		},
		YouTube: config.YouTubeConfig{APIKey: "yt-key", BaseURL: "https://www.googleapis.com/youtube/v3"},
	}
}

func TestNewPrompter(t *testing.T) {
	tests := []struct {
		name     string
		redirect string
		want     any
	}{
		{name: "loopback redirect", redirect: "http://127.0.0.1:8765/callback", want: &callback.Server{}},
		{name: "remote redirect on a pipe", redirect: "https://twitter.com", want: &auth.LinePrompter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fullConfig(t)
			cfg.Twitter.RedirectURL = tt.redirect

			prompter, err := NewPrompter(cfg, pipeTerminal(t, false), zap.NewNop())
			require.NoError(t, err)
			assert.IsType(t, tt.want, prompter)
		})
	}
}

func TestNewPrompter_Plain(t *testing.T) {
	prompter, err := NewPrompter(fullConfig(t), pipeTerminal(t, true), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &auth.LinePrompter{}, prompter)
}

func TestPopulate_Publisher(t *testing.T) {
	var pub *publisher.Publisher
	require.NoError(t, Populate(context.Background(), fullConfig(t), pipeTerminal(t, true), &pub))
	assert.NotNil(t, pub)
}

func TestPopulate_ReportNeedsNoCredentials(t *testing.T) {
	cfg := fullConfig(t)
	cfg.ClientID = ""
	cfg.ClientSecret = ""
	cfg.TokenFile = ""

	var builder *report.Builder
	require.NoError(t, Populate(context.Background(), cfg, pipeTerminal(t, true), &builder))
	assert.NotNil(t, builder)
}

func TestPopulate_MissingConfig(t *testing.T) {
	cfg := fullConfig(t)
	cfg.ClientSecret = ""

	var pub *publisher.Publisher
	err := Populate(context.Background(), cfg, pipeTerminal(t, true), &pub)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMissingConfig)
}

func TestPopulate_ReportUsesAccountsFile(t *testing.T) {
	cfg := fullConfig(t)
	cfg.AccountsFile = filepath.Join(t.TempDir(), "missing.yaml")

	var builder *report.Builder
	err := Populate(context.Background(), cfg, pipeTerminal(t, true), &builder)
	require.Error(t, err)
	assert.Equal(t, errs.KindIO, errs.KindOf(err))
}

func TestPopulate_ReportLoadsAccountsFile(t *testing.T) {
	cfg := fullConfig(t)
	cfg.AccountsFile = filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(cfg.AccountsFile, []byte("accounts:\n  - name: A\n    id: a\n"), 0o600))

	var builder *report.Builder
	require.NoError(t, Populate(context.Background(), cfg, pipeTerminal(t, true), &builder))
	assert.NotNil(t, builder)
}
