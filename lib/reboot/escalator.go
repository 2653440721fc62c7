package reboot

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-i2p/datemon/lib/util/time/wallclock"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// DefaultForceInterval is the pause between forced reboot requests.
const DefaultForceInterval = 120 * time.Second

// Escalator drives the reboot sequence.
type Escalator struct {
	rebooter Rebooter
	clock    wallclock.Clock
	out      io.Writer
	interval time.Duration
}

// NewEscalator creates an Escalator printing its announcements to out.
// A non-positive interval falls back to DefaultForceInterval.
func NewEscalator(rebooter Rebooter, clock wallclock.Clock, out io.Writer, interval time.Duration) *Escalator {
	if interval <= 0 {
		interval = DefaultForceInterval
	}
	return &Escalator{
		rebooter: rebooter,
		clock:    clock,
		out:      out,
		interval: interval,
	}
}

// Interval returns the pause between forced reboot requests.
func (e *Escalator) Interval() time.Duration {
	return e.interval
}

// Escalate requests a graceful reboot, then a forced reboot every interval.
// It only returns when a request cannot be spawned or ctx is done.
func (e *Escalator) Escalate(ctx context.Context) error {
	fmt.Fprintln(e.out, "Rebooting the system")
	log.Warn("Requesting graceful reboot")
	if err := e.rebooter.Graceful(); err != nil {
		return oops.Wrapf(err, "graceful reboot request failed")
	}

	for attempt := 1; ; attempt++ {
		if err := e.clock.Sleep(ctx, e.interval); err != nil {
			log.WithError(err).Debug("Reboot escalation cancelled")
			return err
		}

		fmt.Fprintln(e.out, "Triggering forced reboot")
		log.WithField("attempt", attempt).Warn("Requesting forced reboot")
		if err := e.rebooter.Forced(); err != nil {
			return oops.Wrapf(err, "forced reboot request %d failed", attempt)
		}
	}
}
