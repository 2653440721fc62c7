package wallclock

import (
	"context"
	"time"
)

// Clock reads wall-clock time and suspends the caller.
type Clock interface {
	// Now returns the current wall-clock time without a monotonic reading.
	Now() time.Time
	// Sleep blocks for d, returning ctx.Err() if ctx ends first.
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the Clock backed by the host's real-time clock.
type System struct{}

// NewSystem returns the host clock.
func NewSystem() *System {
	return &System{}
}

// Now returns time.Now() with the monotonic reading stripped, so that
// subtracting two samples reports wall-clock movement including jumps.
func (System) Now() time.Time {
	return time.Now().Round(0)
}

// Sleep waits for d or for ctx to be done, whichever comes first.
// A non-positive d returns immediately unless ctx is already done.
func (System) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Elapsed is the wall-clock duration from previous to current, clamped to
// zero when the clock moved backwards.
func Elapsed(previous, current time.Time) time.Duration {
	d := current.Round(0).Sub(previous.Round(0))
	if d < 0 {
		return 0
	}
	return d
}
