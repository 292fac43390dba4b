package eventagg

import (
	"reflect"
	"unsafe"
	"weak"
)

// Ownership selects how the registry holds a listener.
type Ownership int

const (
	// OwnershipWeak holds a non-owning reference. The listener is dropped
	// from the registry once it has been garbage collected, or once it
	// reports Expired.
	OwnershipWeak Ownership = iota

	// OwnershipStrong keeps the listener alive until it is removed.
	OwnershipStrong
)

// String returns the ownership name used in logs and settings.
func (o Ownership) String() string {
	switch o {
	case OwnershipStrong:
		return "strong"
	case OwnershipWeak:
		return "weak"
	default:
		return "unknown"
	}
}

// reference resolves a registered listener. Target must be called on every
// dispatch; liveness of a weak reference changes between calls.
type reference interface {
	Target() (any, bool)
}

// strongReference owns the listener.
type strongReference struct {
	target any
}

func (r strongReference) Target() (any, bool) {
	return r.target, true
}

// weakReference holds a weak pointer to the listener's pointee and the
// pointer type needed to rebuild a typed value.
type weakReference struct {
	ptr weak.Pointer[byte]
	typ reflect.Type
}

func (r *weakReference) Target() (any, bool) {
	p := r.ptr.Value()
	if p == nil {
		return nil, false
	}
	target := reflect.NewAt(r.typ.Elem(), unsafe.Pointer(p)).Interface()
	if e, ok := target.(Expirer); ok && e.Expired() {
		return nil, false
	}
	return target, true
}

// newReference wraps a listener, which must already be validated as a
// non-nil pointer. The pointee may live outside the heap (a package-level
// variable); its weak pointer then never goes nil. Pointers to zero-size
// values share one address and are never collected, so they are always held
// strongly.
func newReference(listener any, ownership Ownership) reference {
	if ownership == OwnershipStrong {
		return strongReference{target: listener}
	}

	v := reflect.ValueOf(listener)
	if v.Type().Elem().Size() == 0 {
		return strongReference{target: listener}
	}
	return &weakReference{
		ptr: weak.Make((*byte)(v.UnsafePointer())),
		typ: v.Type(),
	}
}

// validListener reports whether listener can be registered: identity is
// pointer identity, so only non-nil pointers qualify.
func validListener(listener any) bool {
	if listener == nil {
		return false
	}
	v := reflect.ValueOf(listener)
	return v.Kind() == reflect.Pointer && !v.IsNil()
}
