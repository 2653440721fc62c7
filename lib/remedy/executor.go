package remedy

import (
	"os"

	"github.com/go-i2p/datemon/lib/util"
)

// DefaultShell interprets remediation commands.
const DefaultShell = "/bin/sh"

// CommandExecutor starts a remediation command and returns without waiting
// for it to finish.
type CommandExecutor interface {
	Spawn(command string) (*os.Process, error)
}

// ShellExecutor runs commands through `sh -c`.
type ShellExecutor struct {
	// Shell defaults to DefaultShell when empty.
	Shell string
}

// NewShellExecutor returns an executor using /bin/sh.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{Shell: DefaultShell}
}

// Spawn starts `sh -c command`.
func (e *ShellExecutor) Spawn(command string) (*os.Process, error) {
	shell := e.Shell
	if shell == "" {
		shell = DefaultShell
	}
	return util.Spawn(shell, "-c", command)
}
