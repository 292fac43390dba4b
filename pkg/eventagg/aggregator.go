package eventagg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventagg/pkg/eventagg/observability"
)

// Aggregator routes published messages to registered listeners.
// It is safe for concurrent use. Handlers may add or remove listeners and
// publish from inside a dispatch.
type Aggregator struct {
	config   Config
	registry *registry

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// NewAggregator creates an aggregator. A nil cfg uses DefaultConfig.
func NewAggregator(cfg *Config, opts ...Option) *Aggregator {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg.withDefaults()
	}

	a := &Aggregator{
		config:   c,
		registry: newRegistry(),
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns a copy of the aggregator's policy.
func (a *Aggregator) Config() Config {
	return a.config
}

// AddListener registers listener for every message contract it declares.
//
// Registering a listener that is already present is a no-op. The listener
// must be a non-nil pointer; identity is pointer identity. It returns a
// *NoHandlerContractError if the listener declares no contracts.
func (a *Aggregator) AddListener(listener any, opts ...ListenerOption) error {
	if !validListener(listener) {
		return fmt.Errorf("%w: got %T", ErrInvalidListener, listener)
	}

	lc := listenerConfig{ownership: a.config.DefaultOwnership}
	for _, opt := range opts {
		opt(&lc)
	}

	reg, err := a.registry.add(listener, func() (*registration, error) {
		return a.build(listener, lc.ownership)
	})
	if err != nil {
		return err
	}
	if reg != nil {
		observability.LogListenerAdded(a.logger, reg.id, reg.listenerType, reg.ownership.String(), len(reg.bindings))
		a.metrics.RecordListeners(context.Background(), 1)
	}
	return nil
}

// RemoveListener unregisters listener. It is a no-op if the listener is
// not registered.
func (a *Aggregator) RemoveListener(listener any) {
	if listener == nil {
		return
	}
	reg := a.registry.remove(listener)
	if reg == nil {
		return
	}
	observability.LogListenerRemoved(a.logger, reg.id, reg.listenerType)
	a.metrics.RecordListeners(context.Background(), -1)
}

// Contains reports whether listener is registered and still alive.
func (a *Aggregator) Contains(listener any) bool {
	if listener == nil {
		return false
	}
	return a.registry.contains(listener)
}

// Len returns the number of registrations, including weak ones whose
// listener has been collected but not yet pruned by a publish.
func (a *Aggregator) Len() int {
	return a.registry.len()
}

// build inspects listener and creates its registration.
func (a *Aggregator) build(listener any, ownership Ownership) (*registration, error) {
	contracts, err := inspect(listener)
	if err != nil {
		return nil, err
	}

	bindings := make([]*binding, len(contracts))
	for i, c := range contracts {
		bindings[i] = newBinding(c, a.config.SupportMessageTypeInheritance)
	}

	return &registration{
		id:           uuid.NewString(),
		listenerType: fmt.Sprintf("%T", listener),
		ownership:    ownership,
		ref:          newReference(listener, ownership),
		bindings:     bindings,
	}, nil
}

// prune drops a registration whose listener is gone.
func (a *Aggregator) prune(ctx context.Context, reg *registration) {
	if !a.registry.discard(reg) {
		return
	}
	observability.LogListenerPruned(a.logger, reg.id, reg.listenerType)
	a.metrics.RecordPruned(ctx, reg.listenerType)
	a.metrics.RecordListeners(ctx, -1)
	a.spans.AddSpanEvent(ctx, "listener.pruned", observability.ListenerAttr(reg.listenerType))
}
