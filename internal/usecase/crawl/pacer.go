package crawl

import (
	"context"
	"time"
)

// Sleeper suspends the crawl between senators.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper sleeps on a timer and returns early with ctx.Err() if the
// context ends first.
type TimerSleeper struct{}

// Sleep blocks for d. A non-positive d returns immediately.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
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
