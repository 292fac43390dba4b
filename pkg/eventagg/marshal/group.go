package marshal

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group fans handlers out to goroutines and collects the first error.
// Use one Group per batch of publishes, then call Wait.
//
//	g := marshal.NewGroup(4)
//	agg.Publish(ctx, msg, eventagg.WithMarshaller(g.Marshaller()))
//	if err := g.Wait(); err != nil { ... }
type Group struct {
	g errgroup.Group
}

// NewGroup creates a Group running at most limit handlers at once.
// A limit of zero or less means no limit. When the limit is reached the
// publishing goroutine blocks until a handler finishes, so a handler must
// not publish through the same Group.
func NewGroup(limit int) *Group {
	g := &Group{}
	if limit > 0 {
		g.g.SetLimit(limit)
	}
	return g
}

// Marshaller returns a sync marshaller that schedules actions on the group.
func (g *Group) Marshaller() Func {
	return func(action func() error) error {
		g.g.Go(action)
		return nil
	}
}

// AsyncMarshaller returns an async marshaller that schedules actions on
// the group. Handlers receive the publish context unchanged.
func (g *Group) AsyncMarshaller() AsyncFunc {
	return func(ctx context.Context, action func(context.Context) error) error {
		g.g.Go(func() error {
			return action(ctx)
		})
		return nil
	}
}

// Wait blocks until every scheduled handler returns and reports the first
// handler error.
func (g *Group) Wait() error {
	return g.g.Wait()
}
