package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records aggregator metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish call with the number of listeners
	// that handled it and its error status.
	RecordPublish(ctx context.Context, messageType string, handled int, duration time.Duration, err error)

	// RecordUnhandled records a message that reached no listener.
	RecordUnhandled(ctx context.Context, messageType string)

	// RecordListeners adjusts the registered listener count by delta.
	RecordListeners(ctx context.Context, delta int64)

	// RecordPruned records removal of a collected or expired listener.
	RecordPruned(ctx context.Context, listenerType string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes  metric.Int64Counter
	latency    metric.Float64Histogram
	errors     metric.Int64Counter
	handled    metric.Int64Counter
	unhandled  metric.Int64Counter
	listeners  metric.Int64UpDownCounter
	prunedLsnr metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventagg")

	publishes, err := meter.Int64Counter("eventagg.publish.count",
		metric.WithDescription("Number of publish calls"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("eventagg.publish.latency_ms",
		metric.WithDescription("Publish latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter("eventagg.publish.errors",
		metric.WithDescription("Number of publish calls aborted by a handler error"),
	)
	if err != nil {
		return nil, err
	}

	handled, err := meter.Int64Counter("eventagg.publish.handled",
		metric.WithDescription("Number of listener deliveries"),
	)
	if err != nil {
		return nil, err
	}

	unhandled, err := meter.Int64Counter("eventagg.publish.unhandled",
		metric.WithDescription("Number of messages that reached no listener"),
	)
	if err != nil {
		return nil, err
	}

	listeners, err := meter.Int64UpDownCounter("eventagg.listeners.registered",
		metric.WithDescription("Number of registered listeners"),
	)
	if err != nil {
		return nil, err
	}

	pruned, err := meter.Int64Counter("eventagg.listeners.pruned",
		metric.WithDescription("Number of weak listeners removed after collection"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:  publishes,
		latency:    latency,
		errors:     errs,
		handled:    handled,
		unhandled:  unhandled,
		listeners:  listeners,
		prunedLsnr: pruned,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPublish records a publish call.
func (m *otelMetrics) RecordPublish(ctx context.Context, messageType string, handled int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("message_type", messageType))

	m.publishes.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.handled.Add(ctx, int64(handled), attrs)
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// RecordUnhandled records a message with no listeners.
func (m *otelMetrics) RecordUnhandled(ctx context.Context, messageType string) {
	m.unhandled.Add(ctx, 1, metric.WithAttributes(attribute.String("message_type", messageType)))
}

// RecordListeners adjusts the registered listener gauge.
func (m *otelMetrics) RecordListeners(ctx context.Context, delta int64) {
	m.listeners.Add(ctx, delta)
}

// RecordPruned records a pruned listener.
func (m *otelMetrics) RecordPruned(ctx context.Context, listenerType string) {
	m.prunedLsnr.Add(ctx, 1, metric.WithAttributes(attribute.String("listener_type", listenerType)))
}
