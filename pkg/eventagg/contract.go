package eventagg

import (
	"context"
	"reflect"
)

// Listener is implemented by types that receive messages from an Aggregator.
//
// Contracts is called once, when the listener is registered. The returned
// contracts should be built from method expressions so they do not capture
// the listener instance:
//
//	func (b *Billing) Contracts() []eventagg.Contract {
//	    return []eventagg.Contract{
//	        eventagg.Handles((*Billing).OnOrderCreated),
//	        eventagg.Handles((*Billing).OnOrderCancelled),
//	    }
//	}
//
// A contract that closes over the receiver keeps it reachable, which
// defeats weak ownership.
type Listener interface {
	Contracts() []Contract
}

// Expirer lets a weakly held listener report that it is gone before the
// garbage collector reclaims it. Expired is called while the registry is
// locked and must not call back into the Aggregator.
type Expirer interface {
	Expired() bool
}

// Contract is the capability "handles message type T" for listener type L.
// Build one with Handles or HandlesAsync.
type Contract struct {
	listenerType reflect.Type
	messageType  reflect.Type
	handle       func(recv, msg any) error
	handleAsync  func(ctx context.Context, recv, msg any) error
}

// Handles returns a contract that delivers messages of type T to handle.
//
// The message is converted with a type assertion; a nil message published
// under static type T arrives as the zero value of T.
func Handles[L, T any](handle func(L, T) error) Contract {
	c := Contract{
		listenerType: reflect.TypeFor[L](),
		messageType:  reflect.TypeFor[T](),
	}
	if handle != nil {
		c.handle = func(recv, msg any) error {
			m, _ := msg.(T)
			return handle(recv.(L), m)
		}
	}
	return c
}

// HandlesAsync returns a contract with both a sync entry point, used by
// Publish, and an async entry point, used by PublishAsync.
func HandlesAsync[L, T any](handle func(L, T) error, handleAsync func(L, context.Context, T) error) Contract {
	c := Handles(handle)
	if handleAsync != nil {
		c.handleAsync = func(ctx context.Context, recv, msg any) error {
			m, _ := msg.(T)
			return handleAsync(recv.(L), ctx, m)
		}
	}
	return c
}

// MessageType returns the declared message type.
func (c Contract) MessageType() reflect.Type { return c.messageType }

// ListenerType returns the listener type the entry points expect.
func (c Contract) ListenerType() reflect.Type { return c.listenerType }

// HasAsync reports whether the contract has a dedicated async entry point.
func (c Contract) HasAsync() bool { return c.handleAsync != nil }

// FuncListener adapts a function into a Listener for messages of type T.
type FuncListener[T any] struct {
	fn      func(T) error
	asyncFn func(context.Context, T) error
}

// Func returns a listener that calls fn for every message of type T.
// Register it with strong ownership unless the caller keeps the returned
// pointer alive.
func Func[T any](fn func(T) error) *FuncListener[T] {
	return &FuncListener[T]{fn: fn}
}

// AsyncFunc returns a listener whose async entry point is fn. The sync
// entry point runs fn with a background context.
func AsyncFunc[T any](fn func(context.Context, T) error) *FuncListener[T] {
	return &FuncListener[T]{
		fn:      func(msg T) error { return fn(context.Background(), msg) },
		asyncFn: fn,
	}
}

// Contracts implements Listener.
func (f *FuncListener[T]) Contracts() []Contract {
	if f.asyncFn != nil {
		return []Contract{HandlesAsync((*FuncListener[T]).handle, (*FuncListener[T]).handleAsync)}
	}
	return []Contract{Handles((*FuncListener[T]).handle)}
}

func (f *FuncListener[T]) handle(msg T) error {
	return f.fn(msg)
}

func (f *FuncListener[T]) handleAsync(ctx context.Context, msg T) error {
	return f.asyncFn(ctx, msg)
}
