package eventagg

import (
	"context"
	"fmt"

	"github.com/randalmurphal/eventagg/pkg/eventagg/config"
	"github.com/randalmurphal/eventagg/pkg/eventagg/marshal"
)

// Marshaller decides how and where a matched handler runs. It receives the
// handler invocation as action and returns the error that Publish should
// report; a marshaller that defers action returns nil.
type Marshaller func(action func() error) error

// AsyncMarshaller is the PublishAsync counterpart of Marshaller.
type AsyncMarshaller func(ctx context.Context, action func(context.Context) error) error

// Config holds aggregator policy. The aggregator copies it at construction.
type Config struct {
	// DefaultOwnership applies when AddListener is called without an
	// ownership option.
	// Default: OwnershipWeak
	DefaultOwnership Ownership

	// SupportMessageTypeInheritance lets a contract declared on an interface
	// type receive every message whose runtime type implements it.
	// Default: false (exact runtime type match only)
	SupportMessageTypeInheritance bool

	// DefaultMarshaller runs sync handlers.
	// Default: inline
	DefaultMarshaller Marshaller

	// DefaultAsyncMarshaller runs async handlers.
	// Default: inline
	DefaultAsyncMarshaller AsyncMarshaller

	// OnZeroListeners is called with a message no listener handled.
	// Default: no-op
	OnZeroListeners func(msg any)
}

// DefaultConfig returns the default aggregator policy.
func DefaultConfig() Config {
	return Config{
		DefaultOwnership:       OwnershipWeak,
		DefaultMarshaller:      marshal.Inline(),
		DefaultAsyncMarshaller: marshal.InlineAsync(),
		OnZeroListeners:        func(any) {},
	}
}

// withDefaults fills unset function fields.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DefaultMarshaller == nil {
		c.DefaultMarshaller = def.DefaultMarshaller
	}
	if c.DefaultAsyncMarshaller == nil {
		c.DefaultAsyncMarshaller = def.DefaultAsyncMarshaller
	}
	if c.OnZeroListeners == nil {
		c.OnZeroListeners = def.OnZeroListeners
	}
	return c
}

// ConfigFromSettings builds a Config from file-based settings.
// OnZeroListeners is left at its default; attach a dead-letter recorder
// separately if one is configured.
func ConfigFromSettings(s config.Settings) (Config, error) {
	if err := s.Validate(); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	cfg.SupportMessageTypeInheritance = s.MessageInheritance
	if s.Ownership == config.OwnershipStrong {
		cfg.DefaultOwnership = OwnershipStrong
	}

	// One limiter is shared by both paths so max_concurrency bounds the
	// total number of running handlers.
	var limit *marshal.Limit
	if s.Marshaller == config.MarshallerLimited || s.AsyncMarshaller == config.MarshallerLimited {
		limit = marshal.NewLimit(s.MaxConcurrency)
	}

	switch s.Marshaller {
	case config.MarshallerInline, "":
		cfg.DefaultMarshaller = marshal.Inline()
	case config.MarshallerGoroutine:
		cfg.DefaultMarshaller = marshal.Go(nil)
	case config.MarshallerLimited:
		cfg.DefaultMarshaller = limit.Marshaller()
	default:
		return Config{}, fmt.Errorf("unknown marshaller %q", s.Marshaller)
	}

	switch s.AsyncMarshaller {
	case config.MarshallerInline, "":
		cfg.DefaultAsyncMarshaller = marshal.InlineAsync()
	case config.MarshallerGoroutine:
		cfg.DefaultAsyncMarshaller = marshal.GoAsync(nil)
	case config.MarshallerLimited:
		cfg.DefaultAsyncMarshaller = limit.AsyncMarshaller()
	default:
		return Config{}, fmt.Errorf("unknown async marshaller %q", s.AsyncMarshaller)
	}

	return cfg, nil
}

// OptionsFromSettings returns the observability options named by s.
func OptionsFromSettings(s config.Settings) []Option {
	return []Option{
		WithMetrics(s.Metrics),
		WithTracing(s.Tracing),
	}
}
