// Package jump classifies the interval between two wall-clock samples.
//
// An interval is anomalous when the clock moved forward by strictly more than
// the configured threshold between two consecutive samples. Backward movement
// is reported as zero elapsed time and is never anomalous; datemon only
// guards against forward jumps.
//
// Usage:
//
//	iv, anomalous := jump.Classify(prev, cur, 24*time.Hour)
//	if anomalous {
//	    ev := jump.NewEvent(iv)
//	    // hand ev to the remediation controller
//	}
package jump
