package eventagg

import "context"

// AsyncResult is the pending outcome of PublishAsync.
type AsyncResult struct {
	done    chan struct{}
	handled int
	err     error
}

func newAsyncResult() *AsyncResult {
	return &AsyncResult{done: make(chan struct{})}
}

func (r *AsyncResult) complete(handled int, err error) {
	r.handled = handled
	r.err = err
	close(r.done)
}

// Done is closed when the dispatch has finished.
func (r *AsyncResult) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the dispatch finishes and returns the number of
// listeners that handled the message and the first handler error.
func (r *AsyncResult) Wait() (int, error) {
	<-r.done
	return r.handled, r.err
}

// WaitContext is Wait bounded by ctx. Giving up does not stop the dispatch.
func (r *AsyncResult) WaitContext(ctx context.Context) (int, error) {
	select {
	case <-r.done:
		return r.handled, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Err waits for the dispatch and returns its error.
func (r *AsyncResult) Err() error {
	<-r.done
	return r.err
}
