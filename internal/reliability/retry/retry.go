package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy controls how many times an operation is attempted and how long
// to wait between attempts. The delay doubles after each failure up to
// MaxDelay.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy suits startup dependencies that may take a few seconds
// to come up, like a database container.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  5,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  10 * time.Second,
	}
}

// Do runs fn until it succeeds, attempts are exhausted, or the context
// is cancelled. The wait between attempts respects context cancellation.
func Do[T any](ctx context.Context, p Policy, log *slog.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := p.BaseDelay
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}
		log.Warn("operation failed, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.Attempts),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)
		if err := wait(ctx, delay); err != nil {
			return zero, err
		}
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return zero, fmt.Errorf("operation '%s' failed after %d attempts: %w", op, p.Attempts, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
