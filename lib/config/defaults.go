package config

import (
	"math"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Default values, matching the documented command-line defaults.
const (
	DefaultThreshold      = 24 * time.Hour
	DefaultExecTimeout    = 300 * time.Second
	DefaultTick           = time.Second
	DefaultRebootInterval = 120 * time.Second
)

// Config is the immutable runtime configuration.
type Config struct {
	// Verbosity is the number of -v flags given.
	Verbosity int

	// Threshold is the largest forward jump between two ticks that is still
	// considered normal.
	Threshold time.Duration

	// Exec is the shell command run when a jump is detected. Empty disables
	// command remediation.
	Exec string

	// ExecTimeout is the grace period between running Exec and re-checking
	// the clock.
	ExecTimeout time.Duration

	// Reboot enables reboot escalation when the jump persists.
	Reboot bool

	// NTPServer, when set, is queried for the clock offset on every detected
	// jump. Reporting only.
	NTPServer string

	// Tick is the sampling period.
	Tick time.Duration

	// RebootInterval is the pause between forced reboot requests.
	RebootInterval time.Duration
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Threshold:      DefaultThreshold,
		ExecTimeout:    DefaultExecTimeout,
		Tick:           DefaultTick,
		RebootInterval: DefaultRebootInterval,
	}
}

// HasExec reports whether a remediation command is configured.
func (c *Config) HasExec() bool {
	return c.Exec != ""
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Verbosity < 0 {
		return oops.Errorf("verbosity must not be negative, got %d", c.Verbosity)
	}
	if c.Threshold <= 0 {
		return oops.Errorf("threshold must be positive, got %s", c.Threshold)
	}
	if c.ExecTimeout < 0 {
		return oops.Errorf("exec-timeout must not be negative, got %s", c.ExecTimeout)
	}
	if c.Exec != "" && strings.TrimSpace(c.Exec) == "" {
		return oops.Errorf("exec command must not be blank")
	}
	if c.Tick <= 0 {
		return oops.Errorf("tick must be positive, got %s", c.Tick)
	}
	if c.RebootInterval <= 0 {
		return oops.Errorf("reboot-interval must be positive, got %s", c.RebootInterval)
	}
	return nil
}

// SecondsToDuration converts a seconds value from a flag or environment
// variable into a time.Duration. NaN, infinities and values that overflow
// time.Duration are rejected.
func SecondsToDuration(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, oops.Errorf("invalid number of seconds: %v", seconds)
	}
	nanos := seconds * float64(time.Second)
	if nanos >= math.MaxInt64 || nanos < math.MinInt64 {
		return 0, oops.Errorf("%v seconds is out of range", seconds)
	}
	return time.Duration(nanos), nil
}
