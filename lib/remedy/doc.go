// Package remedy reacts to a detected clock jump.
//
// A remediation cycle walks a fixed sequence of states:
//
//	Idle -> Detected -> Executing -> Waiting -> Rechecking -> Resolved
//	                                                       \-> Escalating
//
// Detected reports the jump. Executing spawns the configured shell command
// without waiting for it, and Waiting gives that command the configured grace
// period to fix the clock. Rechecking measures the time elapsed since the
// sample taken before the jump; if it is back within the threshold the jump
// is considered resolved. Otherwise the cycle either ends (reboot disabled)
// or hands over to the reboot escalator, which does not come back.
//
// Without a command, Executing and Waiting are skipped and the recheck
// reuses the detection reading, so the jump is always confirmed.
//
// The cycle runs on the caller's goroutine and blocks it for its whole
// duration.
package remedy
