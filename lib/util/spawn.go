package util

import (
	"os"
	"os/exec"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Spawn starts name with args and returns as soon as the process is running.
// The child inherits stdout and stderr. It is reaped by a background
// goroutine so that fire-and-forget children never linger as zombies.
func Spawn(name string, args ...string) (*os.Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, oops.Wrapf(err, "failed to spawn %s", name)
	}

	pid := cmd.Process.Pid
	log.WithFields(map[string]interface{}{
		"name": name,
		"args": args,
		"pid":  pid,
	}).Debug("Spawned child process")

	go func() {
		err := cmd.Wait()
		entry := log.WithField("pid", pid)
		if err != nil {
			entry.WithError(err).Debug("Child process exited with error")
			return
		}
		entry.Debug("Child process exited")
	}()

	return cmd.Process, nil
}
