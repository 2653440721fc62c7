package remedy

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-i2p/datemon/lib/config"
	"github.com/go-i2p/datemon/lib/jump"
	"github.com/go-i2p/datemon/lib/util/time/wallclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingExecutor records spawned commands instead of running them.
type recordingExecutor struct {
	commands []string
	err      error
	onSpawn  func()
}

func (e *recordingExecutor) Spawn(command string) (*os.Process, error) {
	e.commands = append(e.commands, command)
	if e.onSpawn != nil {
		e.onSpawn()
	}
	if e.err != nil {
		return nil, e.err
	}
	return &os.Process{Pid: 4242}, nil
}

// recordingEscalator counts escalations and returns immediately.
type recordingEscalator struct {
	calls int
	err   error
}

func (e *recordingEscalator) Escalate(ctx context.Context) error {
	e.calls++
	return e.err
}

type fakeProbe struct {
	offset time.Duration
	err    error
	calls  int
	// onOffset, if set, runs at the start of every Offset call.
	onOffset func()
}

func (p *fakeProbe) Server() string { return "ntp.example.org" }

func (p *fakeProbe) Offset() (time.Duration, error) {
	p.calls++
	if p.onOffset != nil {
		p.onOffset()
	}
	return p.offset, p.err
}

type fixture struct {
	cfg       *config.Config
	clock     *wallclock.Virtual
	executor  *recordingExecutor
	escalator *recordingEscalator
	out       *bytes.Buffer
	states    []State
	ctrl      *Controller
}

func newFixture(threshold time.Duration, exec string, execTimeout time.Duration, reboot bool) *fixture {
	cfg := config.Defaults()
	cfg.Threshold = threshold
	cfg.Exec = exec
	cfg.ExecTimeout = execTimeout
	cfg.Reboot = reboot

	f := &fixture{
		cfg:       &cfg,
		clock:     wallclock.NewVirtual(start),
		executor:  &recordingExecutor{},
		escalator: &recordingEscalator{},
		out:       &bytes.Buffer{},
	}
	f.ctrl = NewController(f.cfg, f.clock, f.executor, f.escalator, f.out)
	f.ctrl.OnTransition = func(s State) { f.states = append(f.states, s) }
	return f
}

// jumpBy moves the virtual clock forward by d and returns the detection event
// as the monitor loop would build it.
func (f *fixture) jumpBy(d time.Duration) jump.Event {
	prev := f.clock.Now()
	f.clock.Advance(d)
	iv, anomalous := jump.Classify(prev, f.clock.Now(), f.cfg.Threshold)
	if !anomalous {
		panic("fixture jump is not anomalous")
	}
	return jump.NewEvent(iv)
}

func (f *fixture) lines() []string {
	return strings.Split(strings.TrimSpace(f.out.String()), "\n")
}

// TestRemediate_NoCommandNoReboot: threshold 10s, +15s, no command, reboot
// disabled. The jump is reported and tolerated.
func TestRemediate_NoCommandNoReboot(t *testing.T) {
	f := newFixture(10*time.Second, "", 300*time.Second, false)
	ev := f.jumpBy(15 * time.Second)

	res, err := f.ctrl.Remediate(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnresolvedNoReboot, res.Outcome)
	assert.True(t, res.Next.Equal(ev.Current))
	assert.Equal(t, 15*time.Second, res.Recheck.Elapsed)
	assert.Empty(t, f.executor.commands)
	assert.Empty(t, f.clock.Sleeps(), "no grace period without a command")
	assert.Equal(t, 0, f.escalator.calls)
	assert.Equal(t, []State{Detected, Rechecking, Idle}, f.states)
	assert.Equal(t, []string{
		"System time jumped from 2024-03-01T12:00:00Z to 2024-03-01T12:00:15Z (by 0 hours)",
	}, f.lines())
}

// TestRemediate_NoCommandWithReboot verifies the immediate recheck confirms
// the jump and escalates straight away.
func TestRemediate_NoCommandWithReboot(t *testing.T) {
	f := newFixture(10*time.Second, "", 300*time.Second, true)
	ev := f.jumpBy(2 * time.Hour)

	res, err := f.ctrl.Remediate(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnresolvedReboot, res.Outcome)
	assert.Equal(t, 1, f.escalator.calls)
	assert.Empty(t, f.clock.Sleeps())
	assert.Equal(t, []State{Detected, Rechecking, Escalating}, f.states)
}

// TestRemediate_CommandResolves verifies that a command which fixes the
// clock within the grace period resolves the jump without a reboot.
func TestRemediate_CommandResolves(t *testing.T) {
	f := newFixture(10*time.Second, "ntpdate -u pool.ntp.org", 5*time.Second, true)
	ev := f.jumpBy(20 * time.Second)
	// The command steps the clock back to two seconds after the last good sample.
	f.executor.onSpawn = func() { f.clock.Set(ev.Previous.Add(2 * time.Second)) }

	res, err := f.ctrl.Remediate(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, []string{"ntpdate -u pool.ntp.org"}, f.executor.commands)
	assert.Equal(t, []time.Duration{5 * time.Second}, f.clock.Sleeps())
	assert.Equal(t, 7*time.Second, res.Recheck.Elapsed)
	assert.True(t, res.Next.Equal(ev.Previous.Add(7*time.Second)), "next sample is the recheck sample")
	assert.Equal(t, 0, f.escalator.calls)
	assert.Equal(t, []State{Detected, Executing, Waiting, Rechecking, Resolved}, f.states)
	assert.Equal(t, "  executing: ntpdate -u pool.ntp.org", f.lines()[1])
}

// TestRemediate_RecheckEqualToThreshold verifies the strict comparison also
// applies at recheck.
func TestRemediate_RecheckEqualToThreshold(t *testing.T) {
	f := newFixture(10*time.Second, "fix-clock", 4*time.Second, true)
	ev := f.jumpBy(20 * time.Second)
	f.executor.onSpawn = func() { f.clock.Set(ev.Previous.Add(6 * time.Second)) }

	res, err := f.ctrl.Remediate(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, res.Recheck.Elapsed)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, 0, f.escalator.calls)
}

// TestRemediate_CommandDoesNotHelpNoReboot: threshold 10s, elapsed 20s,
// command, exec-timeout 5s, reboot disabled, clock untouched by the command.
func TestRemediate_CommandDoesNotHelpNoReboot(t *testing.T) {
	f := newFixture(10*time.Second, "true", 5*time.Second, false)
	ev := f.jumpBy(20 * time.Second)

	res, err := f.ctrl.Remediate(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnresolvedNoReboot, res.Outcome)
	assert.Equal(t, 25*time.Second, res.Recheck.Elapsed)
	assert.True(t, res.Next.Equal(ev.Current))
	assert.Equal(t, []string{"true"}, f.executor.commands)
	assert.Equal(t, 0, f.escalator.calls)
	assert.Equal(t, []State{Detected, Executing, Waiting, Rechecking, Idle}, f.states)
}

// TestRemediate_CommandDoesNotHelpWithReboot verifies exactly one escalation.
func TestRemediate_CommandDoesNotHelpWithReboot(t *testing.T) {
	f := newFixture(10*time.Second, "true", 5*time.Second, true)
	ev := f.jumpBy(20 * time.Second)

	res, err := f.ctrl.Remediate(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnresolvedReboot, res.Outcome)
	assert.Equal(t, 1, f.escalator.calls)
	assert.Equal(t, []State{Detected, Executing, Waiting, Rechecking, Escalating}, f.states)
}

// TestRemediate_SpawnFailure verifies a spawn failure is fatal and skips the
// rest of the cycle.
func TestRemediate_SpawnFailure(t *testing.T) {
	f := newFixture(10*time.Second, "true", 5*time.Second, true)
	f.executor.err = errors.New("fork/exec /bin/sh: no such file or directory")
	ev := f.jumpBy(20 * time.Second)

	_, err := f.ctrl.Remediate(context.Background(), ev)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "failed to spawn remediation command")
	assert.Empty(t, f.clock.Sleeps())
	assert.Equal(t, 0, f.escalator.calls)
}

// TestRemediate_CancelledDuringGracePeriod verifies cancellation while
// waiting aborts the cycle.
func TestRemediate_CancelledDuringGracePeriod(t *testing.T) {
	f := newFixture(10*time.Second, "true", 5*time.Second, true)
	ev := f.jumpBy(20 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	f.clock.OnSleep = func(int, time.Time) { cancel() }

	_, err := f.ctrl.Remediate(ctx, ev)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.escalator.calls)
}

// TestRemediate_EscalationError verifies a failed escalation is returned.
func TestRemediate_EscalationError(t *testing.T) {
	f := newFixture(10*time.Second, "", 0, true)
	f.escalator.err = errors.New("reboot failed")
	ev := f.jumpBy(time.Minute)

	res, err := f.ctrl.Remediate(context.Background(), ev)
	assert.EqualError(t, err, "reboot failed")
	assert.Equal(t, OutcomeUnresolvedReboot, res.Outcome)
}

// TestRemediate_ReportsOffset verifies the probe result is printed after the
// jump summary.
func TestRemediate_ReportsOffset(t *testing.T) {
	f := newFixture(10*time.Second, "", 0, false)
	probe := &fakeProbe{offset: -26 * time.Hour}
	f.ctrl.SetProbe(probe)

	_, err := f.ctrl.Remediate(context.Background(), f.jumpBy(26*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, probe.calls)
	lines := f.lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "(by 26 hours)")
	assert.Equal(t, "  ntp.example.org reports local clock offset of -26h0m0s", lines[1])
}

// TestRemediate_OffsetReportedAfterSpawn verifies the command is spawned
// before the NTP server is queried, so the query overlaps the grace period.
func TestRemediate_OffsetReportedAfterSpawn(t *testing.T) {
	f := newFixture(10*time.Second, "hwclock --hctosys", 5*time.Second, false)
	var spawnedBeforeQuery bool
	var statesAtQuery []State
	f.ctrl.SetProbe(&fakeProbe{
		offset: -time.Hour,
		onOffset: func() {
			spawnedBeforeQuery = len(f.executor.commands) == 1
			statesAtQuery = append([]State(nil), f.states...)
		},
	})

	_, err := f.ctrl.Remediate(context.Background(), f.jumpBy(time.Hour))
	require.NoError(t, err)

	assert.True(t, spawnedBeforeQuery)
	assert.Equal(t, []State{Detected, Executing, Waiting}, statesAtQuery)
	assert.Equal(t, []string{
		"System time jumped from 2024-03-01T12:00:00Z to 2024-03-01T13:00:00Z (by 1 hours)",
		"  executing: hwclock --hctosys",
		"  ntp.example.org reports local clock offset of -1h0m0s",
	}, f.lines())
}

// TestRemediate_ProbeFailureIgnored verifies probe errors do not change the
// outcome.
func TestRemediate_ProbeFailureIgnored(t *testing.T) {
	f := newFixture(10*time.Second, "", 0, false)
	f.ctrl.SetProbe(&fakeProbe{err: errors.New("i/o timeout")})

	res, err := f.ctrl.Remediate(context.Background(), f.jumpBy(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnresolvedNoReboot, res.Outcome)
	assert.Len(t, f.lines(), 1)
}

func TestStateAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "waiting", Waiting.String())
	assert.Equal(t, "escalating", Escalating.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.Equal(t, "resolved", OutcomeResolved.String())
	assert.Equal(t, "unresolved-no-reboot", OutcomeUnresolvedNoReboot.String())
	assert.Equal(t, "unresolved-reboot", OutcomeUnresolvedReboot.String())
	assert.Equal(t, "unknown", Outcome(7).String())
}
