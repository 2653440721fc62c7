package reboot

import (
	"github.com/go-i2p/datemon/lib/util"
)

// DefaultRebootPath is the reboot binary used by SystemRebooter.
const DefaultRebootPath = "/sbin/reboot"

// Rebooter issues reboot requests to the operating system. Both requests
// are fire-and-forget: they return once the request has been handed off.
type Rebooter interface {
	Graceful() error
	Forced() error
}

// SystemRebooter spawns the platform reboot binary.
type SystemRebooter struct {
	// Path defaults to DefaultRebootPath when empty.
	Path string
}

// NewSystemRebooter returns a Rebooter using /sbin/reboot.
func NewSystemRebooter() *SystemRebooter {
	return &SystemRebooter{Path: DefaultRebootPath}
}

func (r *SystemRebooter) path() string {
	if r.Path == "" {
		return DefaultRebootPath
	}
	return r.Path
}

// Graceful runs `reboot`.
func (r *SystemRebooter) Graceful() error {
	_, err := util.Spawn(r.path())
	return err
}

// Forced runs `reboot -f`, skipping the orderly shutdown.
func (r *SystemRebooter) Forced() error {
	_, err := util.Spawn(r.path(), "-f")
	return err
}
