// Package marshal provides marshallers for the event aggregator.
//
// A marshaller receives one handler invocation as a function and decides
// how and where it runs. Every constructor here returns a plain function
// type, so results can be assigned directly to eventagg.Marshaller and
// eventagg.AsyncMarshaller:
//
//	agg := eventagg.NewAggregator(&eventagg.Config{
//	    DefaultMarshaller: marshal.Retry(marshal.DefaultRetry),
//	})
//
// Marshallers that defer work (Go, Group) return nil to the dispatcher, so
// a deferred handler's error never aborts the publish that scheduled it.
package marshal

import "context"

// Func runs a sync handler invocation.
type Func = func(action func() error) error

// AsyncFunc runs an async handler invocation.
type AsyncFunc = func(ctx context.Context, action func(context.Context) error) error

// Inline runs the action immediately on the publishing goroutine.
func Inline() Func {
	return func(action func() error) error {
		return action()
	}
}

// InlineAsync runs the action immediately with the publish context.
func InlineAsync() AsyncFunc {
	return func(ctx context.Context, action func(context.Context) error) error {
		return action(ctx)
	}
}

// Go runs each action on its own goroutine and returns nil at once.
// Handler errors are passed to onError, which may be nil.
func Go(onError func(error)) Func {
	return func(action func() error) error {
		go func() {
			if err := action(); err != nil && onError != nil {
				onError(err)
			}
		}()
		return nil
	}
}

// GoAsync is the async form of Go. The handler context keeps the publish
// context's values but is not cancelled with it.
func GoAsync(onError func(error)) AsyncFunc {
	return func(ctx context.Context, action func(context.Context) error) error {
		ctx = context.WithoutCancel(ctx)
		go func() {
			if err := action(ctx); err != nil && onError != nil {
				onError(err)
			}
		}()
		return nil
	}
}
