package remedy

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-i2p/datemon/lib/config"
	"github.com/go-i2p/datemon/lib/jump"
	"github.com/go-i2p/datemon/lib/util/time/wallclock"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Escalator is the terminal action of a remediation cycle. Escalate is not
// expected to return unless it fails or ctx is done.
type Escalator interface {
	Escalate(ctx context.Context) error
}

// OffsetProbe measures the local clock against a reference. It is consulted
// for reporting only.
type OffsetProbe interface {
	Server() string
	Offset() (time.Duration, error)
}

// Result describes a finished remediation cycle.
type Result struct {
	Outcome Outcome
	// Next is the sample the monitor loop continues from.
	Next jump.Sample
	// Recheck is the interval evaluated in the Rechecking state.
	Recheck jump.Interval
}

// Controller runs remediation cycles. It is not safe for concurrent use;
// the monitor loop owns it.
type Controller struct {
	cfg       *config.Config
	clock     wallclock.Clock
	executor  CommandExecutor
	escalator Escalator
	probe     OffsetProbe
	out       io.Writer

	// OnTransition, if set, is called on every state change.
	OnTransition func(State)
}

// NewController wires a Controller. Console announcements go to out.
func NewController(cfg *config.Config, clock wallclock.Clock, executor CommandExecutor, escalator Escalator, out io.Writer) *Controller {
	return &Controller{
		cfg:       cfg,
		clock:     clock,
		executor:  executor,
		escalator: escalator,
		out:       out,
	}
}

// SetProbe enables offset reporting on every detected jump. nil disables it.
func (c *Controller) SetProbe(p OffsetProbe) {
	c.probe = p
}

func (c *Controller) enter(s State) {
	log.WithField("state", s.String()).Debug("Remediation state change")
	if c.OnTransition != nil {
		c.OnTransition(s)
	}
}

// Remediate runs one cycle for ev. The returned error is fatal: the command
// or a reboot request could not be spawned, or ctx ended while waiting.
func (c *Controller) Remediate(ctx context.Context, ev jump.Event) (Result, error) {
	c.enter(Detected)
	fmt.Fprintln(c.out, ev.String())
	log.WithFields(map[string]interface{}{
		"from":    ev.Previous.Format(jump.TimestampFormat),
		"to":      ev.Current.Format(jump.TimestampFormat),
		"elapsed": ev.Elapsed.String(),
	}).Warn("System time jump detected")

	recheck := jump.NewInterval(ev.Previous, ev.Current)
	if c.cfg.HasExec() {
		c.enter(Executing)
		fmt.Fprintf(c.out, "  executing: %s\n", c.cfg.Exec)
		if _, err := c.executor.Spawn(c.cfg.Exec); err != nil {
			return Result{}, oops.Wrapf(err, "failed to spawn remediation command %q", c.cfg.Exec)
		}

		c.enter(Waiting)
		c.reportOffset()
		if err := c.clock.Sleep(ctx, c.cfg.ExecTimeout); err != nil {
			return Result{}, err
		}

		c.enter(Rechecking)
		recheck = jump.NewInterval(ev.Previous, c.clock.Now())
	} else {
		c.reportOffset()
		c.enter(Rechecking)
	}

	if !recheck.Exceeds(c.cfg.Threshold) {
		c.enter(Resolved)
		log.WithField("elapsed", recheck.Elapsed.String()).Info("Clock back within threshold after remediation")
		return Result{Outcome: OutcomeResolved, Next: recheck.Current, Recheck: recheck}, nil
	}

	if !c.cfg.Reboot {
		c.enter(Idle)
		log.WithField("elapsed", recheck.Elapsed.String()).Warn("Clock jump persists, reboot disabled; continuing")
		return Result{Outcome: OutcomeUnresolvedNoReboot, Next: ev.Current, Recheck: recheck}, nil
	}

	c.enter(Escalating)
	result := Result{Outcome: OutcomeUnresolvedReboot, Next: ev.Current, Recheck: recheck}
	return result, c.escalator.Escalate(ctx)
}

// reportOffset runs the optional probe. It is called once the command has
// been spawned so a slow server cannot delay remediation.
func (c *Controller) reportOffset() {
	if c.probe == nil {
		return
	}
	offset, err := c.probe.Offset()
	if err != nil {
		log.WithError(err).WithField("server", c.probe.Server()).Warn("Clock offset probe failed")
		return
	}
	fmt.Fprintf(c.out, "  %s reports local clock offset of %s\n", c.probe.Server(), offset)
}
