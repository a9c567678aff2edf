package webhook

import (
	"context"
	"time"
)

// SleepFunc pauses between attempts. Injectable so tests run on a fake clock.
type SleepFunc func(ctx context.Context, d time.Duration)

// Outcome summarizes a bounded retry sequence.
type Outcome struct {
	Attempts int
	Success  bool
	LastErr  error
}

// Retry runs attempt up to maxAttempts times, sleeping delay between failed
// attempts. It stops early on the first success or when ctx is done.
func Retry(ctx context.Context, maxAttempts int, delay time.Duration, sleep SleepFunc, attempt func(ctx context.Context) error) Outcome {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if sleep == nil {
		sleep = sleepContext
	}
	var out Outcome
	for i := 1; i <= maxAttempts; i++ {
		out.Attempts = i
		err := attempt(ctx)
		if err == nil {
			out.Success = true
			out.LastErr = nil
			return out
		}
		out.LastErr = err
		if ctx.Err() != nil {
			return out
		}
		if i < maxAttempts {
			sleep(ctx, delay)
		}
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
