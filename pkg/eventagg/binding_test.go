package eventagg

import (
	"errors"
	"reflect"
	"runtime"
	"testing"
)

type pinged struct{ n int }

type pinger interface{ ping() int }

func (p pinged) ping() int { return p.n }

type pingListener struct{ seen []int }

func (l *pingListener) onPing(p pinger) error {
	l.seen = append(l.seen, p.ping())
	return nil
}

func (l *pingListener) Contracts() []Contract {
	return []Contract{Handles((*pingListener).onPing)}
}

func bindingFor(t *testing.T, listener any, inherit bool) *binding {
	t.Helper()
	bound, err := inspect(listener)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(bound) != 1 {
		t.Fatalf("expected 1 contract, got %d", len(bound))
	}
	return newBinding(bound[0], inherit)
}

func TestBindingExactMatchOnly(t *testing.T) {
	b := bindingFor(t, &pingListener{}, false)

	if b.handlesMessage(pinged{}) {
		t.Error("implementing type should not match without inheritance")
	}
	if b.handlesMessage(nil) {
		t.Error("nil message should never match")
	}
	if !b.handles(reflect.TypeFor[pinger]()) {
		t.Error("declared static type should match")
	}
	if b.handles(nil) {
		t.Error("nil static type should not match")
	}
}

func TestBindingInheritance(t *testing.T) {
	b := bindingFor(t, &pingListener{}, true)

	if !b.handlesMessage(pinged{n: 1}) {
		t.Error("implementing type should match with inheritance")
	}
	if b.handlesMessage("not a pinger") {
		t.Error("unrelated type should not match")
	}
}

func TestBindingMemoizesRuntimeTypes(t *testing.T) {
	b := bindingFor(t, &pingListener{}, true)

	b.handlesMessage(pinged{})
	b.handlesMessage(pinged{n: 2})
	b.handlesMessage(42)

	b.mu.RLock()
	defer b.mu.RUnlock()

	// declared type seeded, plus one entry per distinct runtime type
	if len(b.matches) != 3 {
		t.Errorf("expected 3 memo entries, got %d: %v", len(b.matches), b.matches)
	}
	if !b.matches[reflect.TypeFor[pinged]()] {
		t.Error("expected pinged memoized as a match")
	}
	if b.matches[reflect.TypeFor[int]()] {
		t.Error("expected int memoized as a miss")
	}
}

func TestBindingInvokeAsyncFallsBack(t *testing.T) {
	l := &pingListener{}
	b := bindingFor(t, l, true)

	if err := b.invokeAsync(t.Context(), l, pinged{n: 7}); err != nil {
		t.Fatalf("invokeAsync: %v", err)
	}
	if len(l.seen) != 1 || l.seen[0] != 7 {
		t.Errorf("expected [7], got %v", l.seen)
	}
}

type sized struct{ v int }

func TestStrongReference(t *testing.T) {
	s := &sized{v: 1}
	ref := newReference(s, OwnershipStrong)

	target, ok := ref.Target()
	if !ok || target != any(s) {
		t.Errorf("expected strong reference to resolve to the listener")
	}
}

func TestWeakReferenceResolvesSamePointer(t *testing.T) {
	s := &sized{v: 1}
	ref := newReference(s, OwnershipWeak)

	if _, isWeak := ref.(*weakReference); !isWeak {
		t.Fatalf("expected weak reference, got %T", ref)
	}
	target, ok := ref.Target()
	if !ok {
		t.Fatal("expected live target")
	}
	got, isSized := target.(*sized)
	if !isSized || got != s {
		t.Errorf("expected identical *sized pointer, got %v", target)
	}
	runtime.KeepAlive(s)
}

func TestWeakReferenceZeroSizeIsStrong(t *testing.T) {
	ref := newReference(&struct{}{}, OwnershipWeak)
	if _, isStrong := ref.(strongReference); !isStrong {
		t.Errorf("expected strong reference for zero-size pointee, got %T", ref)
	}
}

func TestValidListener(t *testing.T) {
	var nilPtr *sized
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"typed nil pointer", nilPtr, false},
		{"struct value", sized{}, false},
		{"pointer", &sized{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validListener(tt.in); got != tt.want {
				t.Errorf("validListener(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOwnershipString(t *testing.T) {
	if OwnershipWeak.String() != "weak" || OwnershipStrong.String() != "strong" {
		t.Errorf("unexpected names %q %q", OwnershipWeak, OwnershipStrong)
	}
	if Ownership(9).String() != "unknown" {
		t.Errorf("expected unknown, got %q", Ownership(9))
	}
}

func registrationOf(listener any) *registration {
	return &registration{ref: newReference(listener, OwnershipStrong)}
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	r := newRegistry()
	l := &sized{}

	builds := 0
	build := func() (*registration, error) {
		builds++
		return registrationOf(l), nil
	}

	if reg, err := r.add(l, build); err != nil || reg == nil {
		t.Fatalf("first add: reg=%v err=%v", reg, err)
	}
	if reg, err := r.add(l, build); err != nil || reg != nil {
		t.Errorf("second add should be a no-op: reg=%v err=%v", reg, err)
	}
	if builds != 1 {
		t.Errorf("expected build once, got %d", builds)
	}
	if r.len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.len())
	}
}

func TestRegistryAddBuildError(t *testing.T) {
	r := newRegistry()
	errBuild := errors.New("build failed")

	_, err := r.add(&sized{}, func() (*registration, error) { return nil, errBuild })
	if !errors.Is(err, errBuild) {
		t.Errorf("expected build error, got %v", err)
	}
	if r.len() != 0 {
		t.Errorf("expected empty registry, got %d", r.len())
	}
}

func TestRegistrySnapshotIsIsolated(t *testing.T) {
	r := newRegistry()
	a, b := &sized{v: 1}, &sized{v: 2}
	r.add(a, func() (*registration, error) { return registrationOf(a), nil })

	snap := r.snapshot()
	r.add(b, func() (*registration, error) { return registrationOf(b), nil })

	if len(snap) != 1 {
		t.Errorf("snapshot changed after add: %d entries", len(snap))
	}
	if r.len() != 2 {
		t.Errorf("expected 2 entries, got %d", r.len())
	}
}

func TestRegistryRemoveAndDiscard(t *testing.T) {
	r := newRegistry()
	a, b := &sized{v: 1}, &sized{v: 2}
	regA, _ := r.add(a, func() (*registration, error) { return registrationOf(a), nil })
	r.add(b, func() (*registration, error) { return registrationOf(b), nil })

	if !r.discard(regA) {
		t.Error("expected discard to remove the registration")
	}
	if r.discard(regA) {
		t.Error("second discard should report false")
	}
	if r.contains(a) {
		t.Error("a should be gone")
	}

	if r.remove(b) == nil {
		t.Error("expected remove to return the registration")
	}
	if r.remove(b) != nil {
		t.Error("second remove should return nil")
	}
	if r.len() != 0 {
		t.Errorf("expected empty registry, got %d", r.len())
	}
}
