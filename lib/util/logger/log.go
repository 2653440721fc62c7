// Package logger maps datemon's repeatable -v flag onto the shared go-i2p
// logger. Every other package keeps its own package-level log obtained from
// github.com/go-i2p/logger; this package only adjusts its level and output.
package logger

import (
	"io"
	"os"

	i2plog "github.com/go-i2p/logger"
)

var log = i2plog.GetGoI2PLogger()

// LevelFor returns the logger level for a -v count.
//
//	0  warnings and errors
//	1  info
//	2  debug
//	3+ trace (per-tick readings)
func LevelFor(verbosity int) i2plog.Level {
	switch {
	case verbosity <= 0:
		return i2plog.WarnLevel
	case verbosity == 1:
		return i2plog.InfoLevel
	case verbosity == 2:
		return i2plog.DebugLevel
	default:
		return i2plog.TraceLevel
	}
}

// SetVerbosity points the shared logger at w and sets its level from the -v
// count. When no -v was given and DEBUG_I2P is set, the level chosen by the
// go-i2p logger from the environment is kept.
func SetVerbosity(verbosity int, w io.Writer) {
	log.SetOutput(w)
	if verbosity <= 0 && os.Getenv("DEBUG_I2P") != "" {
		return
	}
	log.SetLevel(LevelFor(verbosity))
	log.WithField("level", log.GetLevel()).Debug("Logging enabled.")
}
