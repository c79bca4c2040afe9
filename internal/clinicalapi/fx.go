package clinicalapi

import "go.uber.org/fx"

var Module = fx.Module("clinicalapi",
	fx.Provide(NewClient),
)
