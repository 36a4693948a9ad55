package gateway

import (
	"context"
	"time"
)

// Waiter is the pause taken after every request to stay under the API rate limit.
type Waiter interface {
	Wait(ctx context.Context) error
}

// SleepWaiter sleeps for a fixed delay.
type SleepWaiter struct {
	Delay time.Duration
}

// Wait blocks for the configured delay or until ctx is done.
func (w SleepWaiter) Wait(ctx context.Context) error {
	if w.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(w.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoopWaiter returns immediately. Used in tests.
type NoopWaiter struct{}

func (NoopWaiter) Wait(ctx context.Context) error { return ctx.Err() }
