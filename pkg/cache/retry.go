package cache

import (
	"context"
	"errors"
	"time"
)

const (
	connectAttempts = 3
	connectDelay    = 200 * time.Millisecond
)

// retry executes fn up to attempts times, doubling delay after each failure.
// Context errors from fn are not retried. Returns the last error if all
// attempts fail, or ctx.Err() if cancelled while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
