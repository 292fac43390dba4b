package marshal

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limit runs handlers inline but bounds how many run at once across every
// publish that shares it.
//
// A handler that publishes through the same Limit holds a slot while it
// waits for another, so the bound must exceed the nesting depth.
type Limit struct {
	sem *semaphore.Weighted
}

// NewLimit creates a Limit with n slots. n below 1 is treated as 1.
func NewLimit(n int) *Limit {
	if n < 1 {
		n = 1
	}
	return &Limit{sem: semaphore.NewWeighted(int64(n))}
}

// Marshaller returns a sync marshaller that waits for a free slot.
func (l *Limit) Marshaller() Func {
	return func(action func() error) error {
		if err := l.sem.Acquire(context.Background(), 1); err != nil {
			return err
		}
		defer l.sem.Release(1)
		return action()
	}
}

// AsyncMarshaller returns an async marshaller that waits for a free slot
// or for ctx to be done, in which case ctx.Err() is returned and the
// handler does not run.
func (l *Limit) AsyncMarshaller() AsyncFunc {
	return func(ctx context.Context, action func(context.Context) error) error {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer l.sem.Release(1)
		return action(ctx)
	}
}

// TryMarshaller returns a sync marshaller that runs the action only when a
// slot is free and otherwise returns ErrSaturated.
func (l *Limit) TryMarshaller() Func {
	return func(action func() error) error {
		if !l.sem.TryAcquire(1) {
			return ErrSaturated
		}
		defer l.sem.Release(1)
		return action()
	}
}
