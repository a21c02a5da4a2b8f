package auth

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/brizzai/subcount-bot/internal/auth/constants"
	"github.com/brizzai/subcount-bot/internal/auth/models"
	"github.com/brizzai/subcount-bot/internal/auth/providers"
	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Service owns the OAuth2 token lifecycle: load from the token file,
// interactive acquisition when there is none, and refresh on expiry. The
// token file is the only state that outlives a run.
type Service struct {
	provider providers.Provider
	prompter Prompter
	files    storage.Files
	location string
	logger   *zap.Logger

	now         func() time.Time
	newVerifier func() string
}

// ServiceParams holds the dependencies of a Service
type ServiceParams struct {
	fx.In

	Config   *config.Config
	Provider providers.Provider
	Prompter Prompter
	Files    storage.Files
	Logger   *zap.Logger
}

// NewService creates a new token Service for the configured token file
func NewService(params ServiceParams) (*Service, error) {
	if params.Config.TokenFile == "" {
		return nil, errs.MissingConfig("oauth2token_file", config.EnvPrefix+"_OAUTH2TOKEN_FILE")
	}

	return &Service{
		provider:    params.Provider,
		prompter:    params.Prompter,
		files:       params.Files,
		location:    params.Config.TokenFile,
		logger:      params.Logger.Named("token"),
		now:         time.Now,
		newVerifier: oauth2.GenerateVerifier,
	}, nil
}

// Token returns a usable token: the stored one, a freshly acquired one if
// there is no token file, refreshed first if it has expired.
func (s *Service) Token(ctx context.Context) (*models.Token, error) {
	token, err := s.LoadOrAcquire(ctx)
	if err != nil {
		return nil, err
	}
	return s.RefreshIfExpired(ctx, token)
}

// LoadOrAcquire reads the token file. When it does not exist, the
// interactive flow runs and its result is written before being returned.
// Any other read or decode failure is returned as is.
func (s *Service) LoadOrAcquire(ctx context.Context) (*models.Token, error) {
	data, err := s.files.Read(ctx, s.location)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Info("Token file not found, getting a new token", zap.String("file", s.location))
		return s.Login(ctx)
	}
	if err != nil {
		return nil, errs.IO("read token file", err)
	}

	var token models.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, errs.State("decode token file", err)
	}
	if err := token.Validate(); err != nil {
		return nil, errs.State("decode token file", err)
	}
	return &token, nil
}

// Login runs the interactive flow and overwrites the token file with the result
func (s *Service) Login(ctx context.Context) (*models.Token, error) {
	token, err := s.AcquireInteractive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// AcquireInteractive runs the authorization code flow with PKCE. The
// operator opens the URL and the prompter hands back the code. Nothing is
// persisted here.
func (s *Service) AcquireInteractive(ctx context.Context) (*models.Token, error) {
	const op = "exchange authorization code"

	verifier := s.newVerifier()
	state := s.newVerifier()
	authURL := s.provider.GetAuthURL(state, verifier)

	code, err := s.prompter.PromptCode(ctx, authURL, state)
	if err != nil {
		var classified *errs.Error
		if errors.As(err, &classified) {
			return nil, err
		}
		return nil, errs.IO("read authorization code", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errs.Protocol("read authorization code", errors.New("no authorization code was entered"))
	}

	grant, err := s.provider.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, errs.Protocol(op, err)
	}
	return s.fromGrant(op, grant)
}

// RefreshSilent exchanges a refresh token for a new token without operator
// interaction. Nothing is persisted here.
func (s *Service) RefreshSilent(ctx context.Context, refreshToken string) (*models.Token, error) {
	const op = "refresh token"

	if refreshToken == "" {
		return nil, errs.E(errs.KindProviderResponse, op, errs.ErrMissingRefreshToken)
	}
	grant, err := s.provider.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errs.Protocol(op, err)
	}
	return s.fromGrant(op, grant)
}

// RefreshIfExpired refreshes and persists token when it expired before now,
// otherwise it returns token unchanged without any network call. There is
// no early-refresh margin.
func (s *Service) RefreshIfExpired(ctx context.Context, token *models.Token) (*models.Token, error) {
	if !token.Expired(s.now()) {
		s.logger.Info("Token not expired", zap.Time("expires", token.Expires))
		return token, nil
	}

	s.logger.Info("Token expired, refreshing", zap.Time("expires", token.Expires))
	refreshed, err := s.RefreshSilent(ctx, token.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// fromGrant turns a provider grant into the persisted record. A grant
// without a refresh token or without a lifetime is rejected.
func (s *Service) fromGrant(op string, grant *oauth2.Token) (*models.Token, error) {
	if grant.RefreshToken == "" {
		return nil, errs.E(errs.KindProviderResponse, op, errs.ErrMissingRefreshToken)
	}

	var expires time.Time
	switch {
	case grant.ExpiresIn > 0:
		expires = s.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	case !grant.Expiry.IsZero():
		expires = grant.Expiry
	default:
		return nil, errs.E(errs.KindProviderResponse, op, errs.ErrMissingExpiry)
	}

	s.logger.Info("Token granted", zap.Time("expires", expires))
	return &models.Token{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		Expires:      expires.UTC().Truncate(time.Second),
		Scopes:       slices.Clone(constants.PersistedScopes),
	}, nil
}

func (s *Service) save(ctx context.Context, token *models.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return errs.E(errs.KindOther, "encode token", err)
	}
	if err := s.files.Write(ctx, s.location, data, constants.TokenFileMode); err != nil {
		return errs.IO("write token file", err)
	}
	s.logger.Debug("Token saved", zap.String("file", s.location))
	return nil
}
