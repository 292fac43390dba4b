package eventagg

import (
	"slices"
	"sync"
)

// registration is one registered listener and its bindings.
type registration struct {
	id           string
	listenerType string
	ownership    Ownership
	ref          reference
	bindings     []*binding
}

// is reports whether the registration holds listener. Dead references
// never match.
func (r *registration) is(listener any) bool {
	target, ok := r.ref.Target()
	return ok && target == listener
}

// registry stores registrations in insertion order.
// The lock covers mutation and copying only, never handler execution.
type registry struct {
	mu      sync.Mutex
	entries []*registration
}

func newRegistry() *registry {
	return &registry{}
}

// add registers the listener built by build unless it is already present.
// build runs without the lock held because it calls listener code.
// Returns the stored registration, or nil when the listener was present.
func (r *registry) add(listener any, build func() (*registration, error)) (*registration, error) {
	if r.contains(listener) {
		return nil, nil
	}

	reg, err := build()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(listener) >= 0 {
		return nil, nil
	}
	r.entries = append(r.entries, reg)
	return reg, nil
}

// remove drops the registration for listener. Returns the removed
// registration, or nil if the listener was not registered.
func (r *registry) remove(listener any) *registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(listener)
	if i < 0 {
		return nil
	}
	reg := r.entries[i]
	r.entries = slices.Delete(r.entries, i, i+1)
	return reg
}

// discard drops a specific registration, typically one whose weak
// reference has died. Returns false if another caller already removed it.
func (r *registry) discard(reg *registration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.entries, reg)
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true
}

// snapshot returns a point-in-time copy in insertion order.
func (r *registry) snapshot() []*registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

func (r *registry) contains(listener any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(listener) >= 0
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) indexLocked(listener any) int {
	return slices.IndexFunc(r.entries, func(reg *registration) bool {
		return reg.is(listener)
	})
}
