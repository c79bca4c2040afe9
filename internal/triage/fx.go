package triage

import (
	"context"

	"go.uber.org/fx"

	"github.com/rkimidis/acucare-pathways-sub001/internal/triage/domain"
	"github.com/rkimidis/acucare-pathways-sub001/internal/triage/service"
)

var Module = fx.Module("triage",
	fx.Provide(
		service.NewEngine,
		service.NewMonitor,
		func(e *service.Engine) domain.Service { return e },
	),
	fx.Invoke(startMonitor),
)

func startMonitor(lc fx.Lifecycle, monitor *service.Monitor) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go monitor.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
