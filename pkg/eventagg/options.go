package eventagg

import (
	"log/slog"

	"github.com/randalmurphal/eventagg/pkg/eventagg/observability"
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for registration bookkeeping.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Uses the global meter provider. Default: disabled
func WithMetrics(enabled bool) Option {
	return func(a *Aggregator) {
		if enabled {
			a.metrics = observability.NewMetricsRecorder()
		} else {
			a.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithTracing enables or disables OpenTelemetry tracing.
// Uses the global tracer provider. Default: disabled
func WithTracing(enabled bool) Option {
	return func(a *Aggregator) {
		if enabled {
			a.spans = observability.NewSpanManager()
		} else {
			a.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.spans = s
		}
	}
}

// ListenerOption configures a single AddListener call.
type ListenerOption func(*listenerConfig)

type listenerConfig struct {
	ownership Ownership
}

// HoldStrongReference overrides Config.DefaultOwnership for one listener.
func HoldStrongReference(hold bool) ListenerOption {
	return func(c *listenerConfig) {
		if hold {
			c.ownership = OwnershipStrong
		} else {
			c.ownership = OwnershipWeak
		}
	}
}

// WithOwnership sets the ownership for one listener.
func WithOwnership(o Ownership) ListenerOption {
	return func(c *listenerConfig) {
		c.ownership = o
	}
}

// PublishOption configures a single publish call.
type PublishOption func(*publishConfig)

type publishConfig struct {
	marshal      Marshaller
	marshalAsync AsyncMarshaller
}

// WithMarshaller overrides Config.DefaultMarshaller for one Publish.
func WithMarshaller(m Marshaller) PublishOption {
	return func(c *publishConfig) {
		if m != nil {
			c.marshal = m
		}
	}
}

// WithAsyncMarshaller overrides Config.DefaultAsyncMarshaller for one
// PublishAsync.
func WithAsyncMarshaller(m AsyncMarshaller) PublishOption {
	return func(c *publishConfig) {
		if m != nil {
			c.marshalAsync = m
		}
	}
}
