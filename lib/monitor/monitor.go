// Package monitor runs datemon's sampling loop.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-i2p/datemon/lib/config"
	"github.com/go-i2p/datemon/lib/jump"
	"github.com/go-i2p/datemon/lib/remedy"
	"github.com/go-i2p/datemon/lib/util/time/wallclock"
	"github.com/go-i2p/logger"
	"golang.org/x/time/rate"
)

var log = logger.GetGoI2PLogger()

// heartbeatInterval bounds how often the loop confirms at debug level that
// it is still sampling.
const heartbeatInterval = time.Minute

// Remediator handles a detected jump. remedy.Controller implements it.
type Remediator interface {
	Remediate(ctx context.Context, ev jump.Event) (remedy.Result, error)
}

// Monitor samples the wall clock once per tick and hands anomalous
// intervals to a Remediator.
type Monitor struct {
	cfg        *config.Config
	clock      wallclock.Clock
	remediator Remediator
	out        io.Writer
	heartbeat  rate.Sometimes

	ticks     uint64
	anomalies uint64
}

// New creates a Monitor. Console announcements go to out.
func New(cfg *config.Config, clock wallclock.Clock, remediator Remediator, out io.Writer) *Monitor {
	return &Monitor{
		cfg:        cfg,
		clock:      clock,
		remediator: remediator,
		out:        out,
		heartbeat:  rate.Sometimes{First: 1, Interval: heartbeatInterval},
	}
}

// Ticks returns the number of completed ticks.
func (m *Monitor) Ticks() uint64 {
	return m.ticks
}

// Anomalies returns the number of jumps handed to the remediator.
func (m *Monitor) Anomalies() uint64 {
	return m.anomalies
}

// Run samples until ctx is done, returning nil in that case. Any other
// returned error is fatal.
func (m *Monitor) Run(ctx context.Context) error {
	fmt.Fprintln(m.out, "Starting datemon: monitoring system for large time/date jumps")
	log.WithFields(map[string]interface{}{
		"threshold": m.cfg.Threshold.String(),
		"tick":      m.cfg.Tick.String(),
		"exec":      m.cfg.Exec,
		"reboot":    m.cfg.Reboot,
	}).Info("Monitor started")

	previous := m.clock.Now()
	for {
		if err := m.clock.Sleep(ctx, m.cfg.Tick); err != nil {
			return m.stopped(err)
		}

		current := m.clock.Now()
		iv, anomalous := jump.Classify(previous, current, m.cfg.Threshold)
		m.ticks++
		log.Tracef("System time increased by %g seconds this second", iv.Elapsed.Seconds())
		m.heartbeat.Do(func() {
			log.WithFields(map[string]interface{}{
				"ticks":     m.ticks,
				"anomalies": m.anomalies,
				"elapsed":   iv.Elapsed.String(),
			}).Debug("Monitor heartbeat")
		})

		if !anomalous {
			previous = current
			continue
		}

		m.anomalies++
		res, err := m.remediator.Remediate(ctx, jump.NewEvent(iv))
		if err != nil {
			return m.stopped(err)
		}
		log.WithField("outcome", res.Outcome.String()).Info("Remediation finished")
		previous = res.Next
	}
}

func (m *Monitor) stopped(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.WithField("ticks", m.ticks).Info("Monitor stopped")
		return nil
	}
	return err
}
