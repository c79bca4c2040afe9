package roster

import "go.uber.org/fx"

var Module = fx.Module("roster",
	fx.Provide(NewResolver),
)
