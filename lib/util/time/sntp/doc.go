// Package sntp measures the host clock's offset against an NTP server.
//
// datemon uses the measurement purely as a diagnostic: when a jump is
// detected, the offset reported by a trusted server tells the operator
// whether the jump moved the clock away from true time or back towards it.
// Nothing here adjusts the system clock.
//
// Usage:
//
//	probe := sntp.NewProbe("pool.ntp.org", &sntp.DefaultNTPClient{})
//	offset, err := probe.Offset()
package sntp
