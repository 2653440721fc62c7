package sntp

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/samber/oops"
)

// validateResponse checks leap indicator, stratum, round-trip time, the time
// value and root metrics. The clock offset is deliberately unbounded: a large
// offset is the measurement, not a fault.
func validateResponse(response *ntp.Response) error {
	if response == nil {
		return oops.Errorf("nil NTP response")
	}
	if err := validateLeapAndStratum(response); err != nil {
		return err
	}
	if err := validateRTT(response); err != nil {
		return err
	}
	if err := validateTimeValue(response); err != nil {
		return err
	}
	return validateRootMetrics(response)
}

func validateLeapAndStratum(response *ntp.Response) error {
	if response.Leap == ntp.LeapNotInSync {
		return oops.Errorf("server clock not synchronized (leap indicator)")
	}
	if response.Stratum == 0 || response.Stratum > 15 {
		return oops.Errorf("stratum level %d is out of valid range", response.Stratum)
	}
	return nil
}

func validateRTT(response *ntp.Response) error {
	if response.RTT < 0 || response.RTT > maxRTT {
		return oops.Errorf("round-trip delay %v is out of bounds", response.RTT)
	}
	return nil
}

func validateTimeValue(response *ntp.Response) error {
	if response.Time.IsZero() {
		return oops.Errorf("received zero time")
	}
	return nil
}

func validateRootMetrics(response *ntp.Response) error {
	if response.RootDispersion > maxRootDispersion {
		return oops.Errorf("root dispersion %v is too high", response.RootDispersion)
	}
	if response.RootDelay > maxRootDelay {
		return oops.Errorf("root delay %v is too high", response.RootDelay)
	}
	return nil
}

const (
	maxRTT            = 2 * time.Second
	maxRootDispersion = 1 * time.Second
	maxRootDelay      = 1 * time.Second
)
