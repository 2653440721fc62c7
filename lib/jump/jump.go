package jump

import (
	"fmt"
	"time"

	"github.com/go-i2p/datemon/lib/util/time/wallclock"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// TimestampFormat renders samples in console output: RFC 3339 with second
// precision and the local zone offset ("Z" for UTC).
const TimestampFormat = time.RFC3339

// Sample is a single wall-clock reading.
type Sample = time.Time

// Interval is the span between two consecutive samples.
type Interval struct {
	Previous Sample
	Current  Sample
	// Elapsed is Current - Previous, clamped to zero.
	Elapsed time.Duration
}

// NewInterval builds the interval from previous to current.
func NewInterval(previous, current Sample) Interval {
	return Interval{
		Previous: previous,
		Current:  current,
		Elapsed:  wallclock.Elapsed(previous, current),
	}
}

// Backwards reports whether the clock moved backwards over the interval.
func (iv Interval) Backwards() bool {
	return iv.Current.Before(iv.Previous)
}

// Exceeds reports whether the interval is longer than threshold.
// An interval exactly equal to threshold does not exceed it.
func (iv Interval) Exceeds(threshold time.Duration) bool {
	return iv.Elapsed > threshold
}

// Classify computes the interval between previous and current and reports
// whether it is an anomalous forward jump.
func Classify(previous, current Sample, threshold time.Duration) (Interval, bool) {
	iv := NewInterval(previous, current)
	if iv.Backwards() {
		log.WithFields(map[string]interface{}{
			"previous": previous.Format(TimestampFormat),
			"current":  current.Format(TimestampFormat),
		}).Debug("System time moved backwards, treating as zero elapsed")
	}
	return iv, iv.Exceeds(threshold)
}

// Event describes an anomalous jump for the duration of one remediation
// cycle.
type Event struct {
	Previous Sample
	Current  Sample
	Elapsed  time.Duration
}

// NewEvent captures an anomalous interval.
func NewEvent(iv Interval) Event {
	return Event{Previous: iv.Previous, Current: iv.Current, Elapsed: iv.Elapsed}
}

// Hours is the jump magnitude in whole hours, rounded down.
func (e Event) Hours() int64 {
	return int64(e.Elapsed.Seconds()) / 3600
}

// String is the human-readable summary printed when a jump is detected.
func (e Event) String() string {
	return fmt.Sprintf("System time jumped from %s to %s (by %d hours)",
		e.Previous.Format(TimestampFormat),
		e.Current.Format(TimestampFormat),
		e.Hours())
}
