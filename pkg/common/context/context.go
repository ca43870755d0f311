package context

import (
	"context"
	"errors"
	"time"
)

// IsTimedOut returns true if the context ended because its deadline passed
func IsTimedOut(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// Wait yields the calling goroutine until signal fires, the interval
// elapses, or ctx is done. It returns ctx.Err() only in the last case.
// A non-positive interval waits for signal or ctx alone.
func Wait(ctx context.Context, signal <-chan struct{}, interval time.Duration) error {
	if interval <= 0 {
		select {
		case <-signal:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-signal:
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
