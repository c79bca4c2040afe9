package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock time so staleness and SLA logic stay testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)
