package subscribers

import "go.uber.org/fx"

var Module = fx.Module("subscribers",
	fx.Provide(
		fx.Annotate(NewYouTube, fx.As(new(Provider))),
	),
)
