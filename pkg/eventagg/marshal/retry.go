package marshal

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// ErrSaturated is returned by a Limit's TryMarshaller when every slot is taken.
var ErrSaturated = errors.New("marshal: concurrency limit reached")

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the starting backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to backoff after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64

	// RetryableFunc reports whether an error is worth another attempt.
	// Nil retries every error.
	RetryableFunc func(error) bool
}

// DefaultRetry is the standard retry configuration.
var DefaultRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// Retry runs the action inline, re-running it while it fails and
// attempts remain. The last handler error is returned unchanged.
func Retry(cfg RetryConfig) Func {
	return func(action func() error) error {
		return retry(context.Background(), cfg, func(context.Context) error {
			return action()
		})
	}
}

// RetryAsync is the async form of Retry. Backoff waits stop early when ctx
// is done, returning the last handler error.
func RetryAsync(cfg RetryConfig) AsyncFunc {
	return func(ctx context.Context, action func(context.Context) error) error {
		return retry(ctx, cfg, action)
	}
}

func retry(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) error {
	attempts := max(cfg.MaxAttempts, 1)
	backoff := cfg.InitialBackoff

	var err error
	for attempt := range attempts {
		if err = fn(ctx); err == nil {
			return nil
		}
		if cfg.RetryableFunc != nil && !cfg.RetryableFunc(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(calculateBackoff(backoff, cfg.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
	return err
}

// calculateBackoff returns the backoff duration with jitter applied.
func calculateBackoff(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 || base <= 0 {
		return base
	}
	jitterAmount := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + jitterAmount)
}
