package wallclock

import (
	"context"
	"sync"
	"time"
)

// Virtual is a manually driven Clock. Sleep never blocks: it advances the
// virtual time by the requested duration and records the request.
//
// Virtual is safe for concurrent use.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	// OnSleep, if set, runs after every Sleep has advanced the clock. Tests
	// use it to inject jumps or cancel the run at a given point.
	OnSleep func(n int, now time.Time)
}

// NewVirtual returns a Virtual clock reading start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start.Round(0)}
}

// Now returns the current virtual time. It carries no monotonic reading.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Sleep advances the clock by d (if positive) and returns. It fails with
// ctx.Err() without advancing if ctx is already done.
func (v *Virtual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	if d > 0 {
		v.now = v.now.Add(d)
	}
	v.sleeps = append(v.sleeps, d)
	n := len(v.sleeps)
	now := v.now
	hook := v.OnSleep
	v.mu.Unlock()

	if hook != nil {
		hook(n, now)
	}
	return ctx.Err()
}

// Set moves the clock to t, forwards or backwards.
func (v *Virtual) Set(t time.Time) {
	v.mu.Lock()
	v.now = t.Round(0)
	v.mu.Unlock()
}

// Advance moves the clock by d without recording a sleep. A negative d
// moves it backwards.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	v.now = v.now.Add(d)
	v.mu.Unlock()
}

// Sleeps returns a copy of every duration passed to Sleep, in order.
func (v *Virtual) Sleeps() []time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]time.Duration, len(v.sleeps))
	copy(out, v.sleeps)
	return out
}
