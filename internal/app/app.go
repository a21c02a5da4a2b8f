// Package app wires the bot's components together.
package app

import (
	"context"
	"io"
	"os"

	"github.com/brizzai/subcount-bot/internal/accounts"
	"github.com/brizzai/subcount-bot/internal/auth"
	"github.com/brizzai/subcount-bot/internal/auth/callback"
	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/dedupe"
	"github.com/brizzai/subcount-bot/internal/logger"
	"github.com/brizzai/subcount-bot/internal/publisher"
	"github.com/brizzai/subcount-bot/internal/report"
	"github.com/brizzai/subcount-bot/internal/storage"
	"github.com/brizzai/subcount-bot/internal/subscribers"
	"github.com/brizzai/subcount-bot/internal/tui"
	"github.com/brizzai/subcount-bot/internal/twitter"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Terminal is where interactive prompts read and write
type Terminal struct {
	In    *os.File
	Out   io.Writer
	Plain bool
}

// Options returns the full component graph. Constructors only run for the
// types a caller asks for, so a report preview never needs credentials.
// Constructors that read state use ctx.
func Options(ctx context.Context, cfg *config.Config, terminal Terminal) fx.Option {
	return fx.Options(
		fx.Supply(cfg, terminal),
		fx.Provide(func() context.Context { return ctx }),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zap.DebugLevel)
			return l
		}),
		logger.Module,
		storage.Module,
		accounts.Module,
		subscribers.Module,
		report.Module,
		dedupe.Module,
		twitter.Module,
		fx.Provide(NewPrompter),
		auth.Module,
		publisher.Module,
	)
}

// NewPrompter picks how the operator hands back the authorization code: a
// loopback redirect is received directly, otherwise the code is typed in,
// through the TUI on a terminal and line by line elsewhere.
func NewPrompter(cfg *config.Config, terminal Terminal, log *zap.Logger) (auth.Prompter, error) {
	if callback.IsLoopback(cfg.Twitter.RedirectURL) {
		server, err := callback.NewServer(cfg.Twitter.RedirectURL, terminal.Out, log)
		if err != nil {
			return nil, err
		}
		return server, nil
	}
	if terminal.Plain || !term.IsTerminal(int(terminal.In.Fd())) {
		return auth.NewLinePrompter(terminal.In, terminal.Out), nil
	}
	return tui.NewCodePrompt(terminal.In, terminal.Out), nil
}

// Populate builds the graph and fills targets, which must be pointers to
// provided types
func Populate(ctx context.Context, cfg *config.Config, terminal Terminal, targets ...any) error {
	app := fx.New(
		Options(ctx, cfg, terminal),
		fx.Populate(targets...),
	)
	return app.Err()
}
