package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	queueRefreshes    metric.Int64Counter
	assignmentActions metric.Int64Counter
	sessionsInvalid   metric.Int64Counter
	staleTransitions  metric.Int64Counter
	refreshLatency    metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "pathways"
	}
	meter := provider.Meter(name)

	queueRefreshes, err := meter.Int64Counter("pathways_queue_refreshes_total")
	if err != nil {
		return nil, err
	}
	assignmentActions, err := meter.Int64Counter("pathways_assignment_actions_total")
	if err != nil {
		return nil, err
	}
	sessionsInvalid, err := meter.Int64Counter("pathways_sessions_invalidated_total")
	if err != nil {
		return nil, err
	}
	staleTransitions, err := meter.Int64Counter("pathways_queue_stale_transitions_total")
	if err != nil {
		return nil, err
	}
	refreshLatency, err := meter.Float64Histogram("pathways_queue_refresh_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		queueRefreshes:    queueRefreshes,
		assignmentActions: assignmentActions,
		sessionsInvalid:   sessionsInvalid,
		staleTransitions:  staleTransitions,
		refreshLatency:    refreshLatency,
	}, nil
}

// RecordQueueRefresh counts one refresh attempt and its latency.
func (m *Metrics) RecordQueueRefresh(ctx context.Context, trigger, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("trigger", strings.TrimSpace(trigger)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.queueRefreshes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.refreshLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAssignmentAction counts claim, unassign and reassign outcomes.
func (m *Metrics) RecordAssignmentAction(ctx context.Context, action, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("action", strings.TrimSpace(action)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.assignmentActions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSessionInvalidated counts credential rejections on queue fetches.
func (m *Metrics) RecordSessionInvalidated(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.sessionsInvalid.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStaleTransition counts views crossing the staleness threshold.
func (m *Metrics) RecordStaleTransition(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleTransitions.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"trigger": {},
	"outcome": {},
	"action":  {},
	"reason":  {},
	"tier":    {},
	"role":    {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
