package eventagg

import (
	"context"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/eventagg/pkg/eventagg/observability"
)

// Publish delivers msg to every listener whose contract matches its runtime
// type and returns the number of listeners that handled it.
//
// Handlers run in registration order through the effective Marshaller.
// The first handler error stops the dispatch and is returned as is, along
// with the count of listeners handled before it. When no listener handles
// msg, Config.OnZeroListeners is called.
func (a *Aggregator) Publish(ctx context.Context, msg any, opts ...PublishOption) (int, error) {
	return a.publish(ctx, msg, nil, opts)
}

// PublishAsync is Publish on a separate goroutine using async entry points.
// Listeners are awaited one at a time, in registration order. The
// registration snapshot is taken before PublishAsync returns.
//
// ctx is passed to handlers; the dispatcher itself does not stop when ctx
// is cancelled, and a handler that never returns blocks the result forever.
func (a *Aggregator) PublishAsync(ctx context.Context, msg any, opts ...PublishOption) *AsyncResult {
	return a.publishAsync(ctx, msg, nil, opts)
}

// Send publishes msg under its static type T. Besides runtime type matches,
// every listener with a contract declared for exactly T receives it, which
// lets callers target an interface contract without inheritance matching.
func Send[T any](ctx context.Context, a *Aggregator, msg T, opts ...PublishOption) (int, error) {
	return a.publish(ctx, msg, reflect.TypeFor[T](), opts)
}

// SendAsync is the PublishAsync form of Send.
func SendAsync[T any](ctx context.Context, a *Aggregator, msg T, opts ...PublishOption) *AsyncResult {
	return a.publishAsync(ctx, msg, reflect.TypeFor[T](), opts)
}

// SendNew publishes the zero value of T under static type T.
func SendNew[T any](ctx context.Context, a *Aggregator, opts ...PublishOption) (int, error) {
	var msg T
	return Send(ctx, a, msg, opts...)
}

func (a *Aggregator) publishConfig(opts []PublishOption) publishConfig {
	pc := publishConfig{
		marshal:      a.config.DefaultMarshaller,
		marshalAsync: a.config.DefaultAsyncMarshaller,
	}
	for _, opt := range opts {
		opt(&pc)
	}
	return pc
}

func (a *Aggregator) publish(ctx context.Context, msg any, static reflect.Type, opts []PublishOption) (int, error) {
	pc := a.publishConfig(opts)
	msgType := messageTypeName(msg, static)

	ctx, span := a.spans.StartPublishSpan(ctx, msgType, false)
	start := time.Now()

	handled, err := a.dispatch(ctx, a.registry.snapshot(), msg, static, func(b *binding, recv any) error {
		return pc.marshal(func() error {
			return b.invoke(recv, msg)
		})
	})

	a.finish(ctx, span, msg, msgType, handled, time.Since(start), err)
	return handled, err
}

func (a *Aggregator) publishAsync(ctx context.Context, msg any, static reflect.Type, opts []PublishOption) *AsyncResult {
	pc := a.publishConfig(opts)
	regs := a.registry.snapshot()
	res := newAsyncResult()

	go func() {
		msgType := messageTypeName(msg, static)
		ctx, span := a.spans.StartPublishSpan(ctx, msgType, true)
		start := time.Now()

		handled, err := a.dispatch(ctx, regs, msg, static, func(b *binding, recv any) error {
			return pc.marshalAsync(ctx, func(ctx context.Context) error {
				return b.invokeAsync(ctx, recv, msg)
			})
		})

		a.finish(ctx, span, msg, msgType, handled, time.Since(start), err)
		res.complete(handled, err)
	}()

	return res
}

// dispatch visits regs in order, pruning dead references, and calls invoke
// for every matching binding. A listener counts once however many of its
// bindings matched.
func (a *Aggregator) dispatch(
	ctx context.Context,
	regs []*registration,
	msg any,
	static reflect.Type,
	invoke func(b *binding, recv any) error,
) (int, error) {
	handled := 0
	for _, reg := range regs {
		target, ok := reg.ref.Target()
		if !ok {
			a.prune(ctx, reg)
			continue
		}

		called := false
		for _, b := range reg.bindings {
			if !b.match(static, msg) {
				continue
			}
			recv, ok := b.receiver(target)
			if !ok {
				continue
			}
			if err := invoke(b, recv); err != nil {
				return handled, err
			}
			called = true
		}
		if called {
			handled++
		}
	}
	return handled, nil
}

// finish records the outcome of one publish and fires the zero-listener
// callback.
func (a *Aggregator) finish(
	ctx context.Context,
	span trace.Span,
	msg any,
	msgType string,
	handled int,
	duration time.Duration,
	err error,
) {
	if err == nil && handled == 0 {
		observability.LogUnhandled(a.logger, msgType)
		a.metrics.RecordUnhandled(ctx, msgType)
		a.config.OnZeroListeners(msg)
	}

	a.metrics.RecordPublish(ctx, msgType, handled, duration, err)
	span.SetAttributes(observability.HandledAttr(handled))
	a.spans.EndSpanWithError(span, err)
}

// messageTypeName names a message for logs and telemetry.
func messageTypeName(msg any, static reflect.Type) string {
	if msg != nil {
		return reflect.TypeOf(msg).String()
	}
	return typeName(static)
}
