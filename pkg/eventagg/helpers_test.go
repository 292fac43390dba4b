package eventagg_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/eventagg/pkg/eventagg"
)

// Messages used across tests.
type OrderCreated struct{ ID int }

type OrderCancelled struct{ ID int }

type UnknownMessage struct{}

// DomainEvent is implemented by OrderCreated and OrderCancelled.
type DomainEvent interface{ EventName() string }

func (OrderCreated) EventName() string   { return "order.created" }
func (OrderCancelled) EventName() string { return "order.cancelled" }

// createdListener handles OrderCreated.
type createdListener struct {
	mu  sync.Mutex
	got []OrderCreated
}

func (l *createdListener) OnCreated(e OrderCreated) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.got = append(l.got, e)
	return nil
}

func (l *createdListener) Contracts() []eventagg.Contract {
	return []eventagg.Contract{eventagg.Handles((*createdListener).OnCreated)}
}

func (l *createdListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.got)
}

// orderListener handles OrderCreated and OrderCancelled.
type orderListener struct {
	created   atomic.Int32
	cancelled atomic.Int32
}

func (l *orderListener) OnCreated(OrderCreated) error {
	l.created.Add(1)
	return nil
}

func (l *orderListener) OnCancelled(OrderCancelled) error {
	l.cancelled.Add(1)
	return nil
}

func (l *orderListener) Contracts() []eventagg.Contract {
	return []eventagg.Contract{
		eventagg.Handles((*orderListener).OnCreated),
		eventagg.Handles((*orderListener).OnCancelled),
	}
}

// domainListener handles the DomainEvent interface.
type domainListener struct {
	names []string
}

func (l *domainListener) OnEvent(e DomainEvent) error {
	l.names = append(l.names, e.EventName())
	return nil
}

func (l *domainListener) Contracts() []eventagg.Contract {
	return []eventagg.Contract{eventagg.Handles((*domainListener).OnEvent)}
}

// hookListener runs fn for every OrderCreated.
type hookListener struct {
	fn func(OrderCreated) error
}

func (l *hookListener) OnCreated(e OrderCreated) error {
	return l.fn(e)
}

func (l *hookListener) Contracts() []eventagg.Contract {
	return []eventagg.Contract{eventagg.Handles((*hookListener).OnCreated)}
}

// asyncListener has a dedicated async entry point.
type asyncListener struct {
	sync  atomic.Int32
	async atomic.Int32
	fn    func(ctx context.Context, e OrderCreated) error
}

func (l *asyncListener) OnCreated(OrderCreated) error {
	l.sync.Add(1)
	return nil
}

func (l *asyncListener) OnCreatedAsync(ctx context.Context, e OrderCreated) error {
	l.async.Add(1)
	if l.fn != nil {
		return l.fn(ctx, e)
	}
	return nil
}

func (l *asyncListener) Contracts() []eventagg.Contract {
	return []eventagg.Contract{
		eventagg.HandlesAsync((*asyncListener).OnCreated, (*asyncListener).OnCreatedAsync),
	}
}

// notAListener declares no contracts.
type notAListener struct{ name string }

// emptyListener declares an empty contract set.
type emptyListener struct{ name string }

func (*emptyListener) Contracts() []eventagg.Contract { return nil }

// strongConfig returns a config that keeps listeners alive, for tests that
// are not about ownership.
func strongConfig() *eventagg.Config {
	cfg := eventagg.DefaultConfig()
	cfg.DefaultOwnership = eventagg.OwnershipStrong
	return &cfg
}
