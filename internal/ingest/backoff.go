package ingest

import (
	"context"
	"time"
)

const (
	maxAttempts  = 5
	backoffBase  = 500 * time.Millisecond
	backoffLimit = 8 * time.Second
)

// backoffDelay returns the wait before retry number attempt (1-based):
// base doubled per attempt, capped. Pure so tests can assert the schedule
// without waiting it out.
func backoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= backoffLimit {
			return backoffLimit
		}
	}
	if delay > backoffLimit {
		return backoffLimit
	}
	return delay
}

// Sleeper abstracts waiting between retry attempts.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// realSleeper waits on a timer, honoring context cancellation.
type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
