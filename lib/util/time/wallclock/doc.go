// Package wallclock provides wall-clock time access for datemon.
//
// Go's time.Now() carries a monotonic clock reading alongside the wall clock,
// and time.Time.Sub prefers the monotonic reading when both operands have
// one. That is exactly wrong for a jump detector: a settimeofday() or an
// NTP step moves the wall clock but not the monotonic clock, so the jump
// would be invisible. Clock.Now therefore strips the monotonic reading with
// Round(0), and every duration computed from two samples is a pure
// wall-clock difference.
//
// The Clock interface also owns sleeping, which makes the tick period, the
// remediation grace period and the reboot retry interval all controllable
// from tests through Virtual:
//
//	clk := wallclock.NewVirtual(start)
//	clk.Advance(15 * time.Second) // simulate a forward jump
//	_ = clk.Sleep(ctx, time.Minute) // returns at once, time moves by a minute
package wallclock
