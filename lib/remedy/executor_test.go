package remedy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShellExecutor_Spawn verifies the command is interpreted by the shell.
func TestShellExecutor_Spawn(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "fixed")

	proc, err := NewShellExecutor().Spawn("echo ok > " + marker + " && true")
	require.NoError(t, err)
	require.NotNil(t, proc)

	assert.Eventually(t, func() bool {
		data, readErr := os.ReadFile(marker)
		return readErr == nil && string(data) == "ok\n"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestShellExecutor_DefaultShell(t *testing.T) {
	_, err := (&ShellExecutor{}).Spawn("exit 0")
	assert.NoError(t, err)
}

func TestShellExecutor_MissingShell(t *testing.T) {
	e := &ShellExecutor{Shell: filepath.Join(t.TempDir(), "sh")}
	_, err := e.Spawn("true")
	assert.Error(t, err)
}
