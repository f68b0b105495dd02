package ratelimit

import (
	"context"
	"time"
)

// Pause sleeps for d unless ctx is cancelled first.
// Unlike Limiter.Wait it always waits the full interval.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
