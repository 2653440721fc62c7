package sntp

import (
	"sort"
	"time"

	"github.com/beevik/ntp"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

type NTPClient interface {
	QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error)
}

type DefaultNTPClient struct{}

func (c *DefaultNTPClient) QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error) {
	return ntp.QueryWithOptions(host, options)
}

const (
	defaultTimeout = 5 * time.Second
	defaultSamples = 3
	// maxSampleSpread bounds how far individual samples may disagree before
	// the measurement is discarded.
	maxSampleSpread = 2 * time.Second
)

// Probe queries a single NTP server for the local clock offset.
type Probe struct {
	server  string
	client  NTPClient
	timeout time.Duration
	samples int
}

// NewProbe creates a Probe against server. A nil client uses DefaultNTPClient.
func NewProbe(server string, client NTPClient) *Probe {
	if client == nil {
		client = &DefaultNTPClient{}
	}
	return &Probe{
		server:  server,
		client:  client,
		timeout: defaultTimeout,
		samples: defaultSamples,
	}
}

// Server returns the queried host.
func (p *Probe) Server() string {
	return p.server
}

// Offset queries the server several times and returns the median clock
// offset: positive when the local clock is behind the server, negative when
// it is ahead. Any failed or invalid sample fails the whole measurement.
func (p *Probe) Offset() (time.Duration, error) {
	if p.server == "" {
		return 0, oops.Errorf("no NTP server configured")
	}

	offsets := make([]time.Duration, 0, p.samples)
	for i := 0; i < p.samples; i++ {
		offset, err := p.querySingle()
		if err != nil {
			return 0, err
		}
		offsets = append(offsets, offset)
	}

	if spread := sampleSpread(offsets); spread > maxSampleSpread {
		return 0, oops.Errorf("NTP samples from %s disagree by %s", p.server, spread)
	}

	median := calculateMedian(offsets)
	log.WithFields(map[string]interface{}{
		"server":  p.server,
		"offset":  median.String(),
		"samples": len(offsets),
	}).Debug("Measured clock offset")
	return median, nil
}

func (p *Probe) querySingle() (time.Duration, error) {
	response, err := p.client.QueryWithOptions(p.server, ntp.QueryOptions{Timeout: p.timeout})
	if err != nil {
		log.WithError(err).WithField("server", p.server).Debug("NTP query failed")
		return 0, oops.Wrapf(err, "NTP query to %s failed", p.server)
	}
	if err := validateResponse(response); err != nil {
		log.WithError(err).WithField("server", p.server).Debug("NTP response failed validation")
		return 0, oops.Wrapf(err, "invalid NTP response from %s", p.server)
	}
	return response.ClockOffset, nil
}

func calculateMedian(deltas []time.Duration) time.Duration {
	if len(deltas) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(deltas))
	copy(sorted, deltas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func sampleSpread(deltas []time.Duration) time.Duration {
	if len(deltas) == 0 {
		return 0
	}
	lo, hi := deltas[0], deltas[0]
	for _, d := range deltas[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return hi - lo
}
