package eventagg

import (
	"context"
	"reflect"
	"sync"
)

// binding is the per-(listener, contract) record used to match messages.
type binding struct {
	messageType reflect.Type
	handle      func(recv, msg any) error
	handleAsync func(ctx context.Context, recv, msg any) error
	receiver    func(target any) (any, bool)
	inherit     bool

	mu      sync.RWMutex
	matches map[reflect.Type]bool // runtime message type -> matches
}

func newBinding(c boundContract, inherit bool) *binding {
	return &binding{
		messageType: c.messageType,
		handle:      c.handle,
		handleAsync: c.handleAsync,
		receiver:    c.receiver,
		inherit:     inherit,
		matches:     map[reflect.Type]bool{c.messageType: true},
	}
}

// handles reports whether the binding's contract is the one a caller
// targeted by publishing under static type.
func (b *binding) handles(static reflect.Type) bool {
	return static != nil && static == b.messageType
}

// handlesMessage reports whether msg's runtime type matches the declared
// message type. Results are memoized per runtime type.
func (b *binding) handlesMessage(msg any) bool {
	if msg == nil {
		return false
	}
	rt := reflect.TypeOf(msg)

	b.mu.RLock()
	matched, known := b.matches[rt]
	b.mu.RUnlock()
	if known {
		return matched
	}

	matched = rt == b.messageType || (b.inherit && rt.AssignableTo(b.messageType))

	b.mu.Lock()
	b.matches[rt] = matched
	b.mu.Unlock()
	return matched
}

// match combines the capability-targeted and runtime checks.
func (b *binding) match(static reflect.Type, msg any) bool {
	return b.handles(static) || b.handlesMessage(msg)
}

// invoke runs the sync entry point.
func (b *binding) invoke(recv, msg any) error {
	return b.handle(recv, msg)
}

// invokeAsync runs the async entry point, or the sync one when the
// contract has none.
func (b *binding) invokeAsync(ctx context.Context, recv, msg any) error {
	if b.handleAsync == nil {
		return b.handle(recv, msg)
	}
	return b.handleAsync(ctx, recv, msg)
}
