// Package publisher runs one post: token, report, duplicate check, post,
// snapshot.
package publisher

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/brizzai/subcount-bot/internal/auth"
	"github.com/brizzai/subcount-bot/internal/auth/models"
	"github.com/brizzai/subcount-bot/internal/dedupe"
	"github.com/brizzai/subcount-bot/internal/report"
	"github.com/brizzai/subcount-bot/internal/twitter"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// DuplicatePrefix starts the text posted in place of an unchanged report
	DuplicatePrefix = "Same as before. "
	suffixLength    = 16
	alphanumeric    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var Module = fx.Module("publisher",
	fx.Provide(NewPublisher),
)

// TokenSource yields a usable access token
type TokenSource interface {
	LoadOrAcquire(ctx context.Context) (*models.Token, error)
	RefreshIfExpired(ctx context.Context, token *models.Token) (*models.Token, error)
}

// ReportBuilder renders the current report
type ReportBuilder interface {
	Build(ctx context.Context) (string, error)
}

// Snapshots remembers the last original report that was posted
type Snapshots interface {
	IsDuplicate(ctx context.Context, candidate string) (bool, error)
	Save(ctx context.Context, content string) error
}

// Poster creates a post
type Poster interface {
	Post(ctx context.Context, token *models.Token, text string) (*twitter.PostResponse, error)
}

// Publisher orchestrates one post run
type Publisher struct {
	tokens    TokenSource
	reports   ReportBuilder
	snapshots Snapshots
	poster    Poster
	logger    *zap.Logger

	now    func() time.Time
	suffix func() string
}

// Params holds the dependencies of a Publisher
type Params struct {
	fx.In

	Tokens    *auth.Service
	Reports   *report.Builder
	Snapshots *dedupe.Store
	Poster    *twitter.Client
	Logger    *zap.Logger
}

// NewPublisher creates a Publisher from the wired components
func NewPublisher(params Params) *Publisher {
	return New(params.Tokens, params.Reports, params.Snapshots, params.Poster, params.Logger)
}

// New creates a Publisher
func New(tokens TokenSource, reports ReportBuilder, snapshots Snapshots, poster Poster, logger *zap.Logger) *Publisher {
	return &Publisher{
		tokens:    tokens,
		reports:   reports,
		snapshots: snapshots,
		poster:    poster,
		logger:    logger.Named("publisher"),
		now:       time.Now,
		suffix:    randomSuffix,
	}
}

// Run posts the current report. An unchanged report is replaced by
// DuplicatePrefix and a random suffix, and the snapshot is then left as
// it was. Nothing is retried.
func (p *Publisher) Run(ctx context.Context) (*twitter.PostResponse, error) {
	token, err := p.tokens.LoadOrAcquire(ctx)
	if err != nil {
		return nil, err
	}
	token, err = p.tokens.RefreshIfExpired(ctx, token)
	if err != nil {
		return nil, err
	}

	intended, err := p.reports.Build(ctx)
	if err != nil {
		return nil, err
	}

	duplicate, err := p.snapshots.IsDuplicate(ctx, intended)
	if err != nil {
		return nil, err
	}
	text := intended
	if duplicate {
		text = DuplicatePrefix + p.suffix()
		p.logger.Info("Report unchanged since the last post")
	}

	resp, err := p.poster.Post(ctx, token, text)
	if err != nil {
		p.logger.Error("Post failed", zap.String("intended", intended), zap.Error(err))
		return nil, err
	}

	if !duplicate {
		if err := p.snapshots.Save(ctx, text); err != nil {
			return nil, err
		}
	}

	p.logger.Info("Posted",
		zap.Time("timestamp", p.now().UTC()),
		zap.String("id", resp.Data.ID),
		zap.ByteString("response", resp.Raw),
	)
	return resp, nil
}

func randomSuffix() string {
	b := make([]byte, suffixLength)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(b)
}
