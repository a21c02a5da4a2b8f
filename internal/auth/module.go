package auth

import (
	"github.com/brizzai/subcount-bot/internal/auth/providers"
	"go.uber.org/fx"
)

// Module provides the X OAuth2 provider and the token Service. A Prompter
// must be supplied by the caller.
var Module = fx.Module("auth",
	fx.Provide(
		fx.Annotate(
			providers.NewTwitterProvider,
			fx.As(new(providers.Provider)),
		),
		NewService,
	),
)
