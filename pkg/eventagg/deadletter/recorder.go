package deadletter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/eventagg/pkg/eventagg/config"
	"github.com/randalmurphal/eventagg/pkg/eventagg/observability"
)

// Recorder saves unhandled messages to a Store. Its Record method has the
// shape of eventagg.Config.OnZeroListeners.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	onError func(msg any, err error)
	timeout time.Duration
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger used for store failures.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithErrorHandler is called when an entry cannot be encoded or saved.
func WithErrorHandler(fn func(msg any, err error)) RecorderOption {
	return func(r *Recorder) {
		r.onError = fn
	}
}

// WithTimeout bounds each Save call.
// Default: 5s
func WithTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRecorder creates a Recorder writing to store. A nil store, as returned
// by Open for a disabled driver, makes Record a no-op.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:   store,
		logger:  slog.Default(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores msg. Failures are logged and passed to the error handler;
// they never reach the publisher.
func (r *Recorder) Record(msg any) {
	if r.store == nil {
		return
	}

	e, err := NewEntry(msg)
	if err != nil {
		r.fail(msg, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.Save(ctx, e); err != nil {
		r.fail(msg, err)
	}
}

// Store returns the underlying store.
func (r *Recorder) Store() Store {
	return r.store
}

func (r *Recorder) fail(msg any, err error) {
	observability.LogDeadLetterError(r.logger, messageType(msg), err)
	if r.onError != nil {
		r.onError(msg, err)
	}
}

// Open creates the store named by settings. It returns nil and no error
// when the driver is empty.
func Open(s config.DeadLetter) (Store, error) {
	switch s.Driver {
	case "":
		return nil, nil
	case config.DriverMemory:
		return NewMemoryStore(s.MaxEntries), nil
	case config.DriverSQLite:
		store, err := NewSQLiteStore(s.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown dead letter driver %q", s.Driver)
	}
}
