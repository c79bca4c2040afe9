package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Monitor drives the fixed-cadence queue polling. The interval never backs
// off on error: a failing clinical API keeps failing quietly while the
// last-good list stays visible, bounded by the staleness threshold.
type Monitor struct {
	engine   *Engine
	interval time.Duration
	log      *zap.Logger
}

func NewMonitor(engine *Engine, log *zap.Logger) *Monitor {
	interval := engine.cfg.QueueRefreshInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Monitor{
		engine:   engine,
		interval: interval,
		log:      log.Named("triage.monitor"),
	}
}

func (m *Monitor) RunForever(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Info("queue polling started", zap.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.log.Info("queue polling stopped")
			return
		case <-ticker.C:
			m.engine.refreshAll(ctx)
		}
	}
}
