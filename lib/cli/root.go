// Package cli implements the datemon command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-i2p/datemon/lib/config"
	"github.com/go-i2p/datemon/lib/monitor"
	"github.com/go-i2p/datemon/lib/reboot"
	"github.com/go-i2p/datemon/lib/remedy"
	"github.com/go-i2p/datemon/lib/util/logger"
	"github.com/go-i2p/datemon/lib/util/time/sntp"
	"github.com/go-i2p/datemon/lib/util/time/wallclock"
	"github.com/spf13/cobra"
)

// Deps are the operating-system facing collaborators. Tests replace them
// with fakes; DefaultDeps returns the real ones.
type Deps struct {
	Clock     wallclock.Clock
	Executor  remedy.CommandExecutor
	Rebooter  reboot.Rebooter
	NTPClient sntp.NTPClient
}

// DefaultDeps returns the host clock, /bin/sh, /sbin/reboot and the
// beevik/ntp client.
func DefaultDeps() Deps {
	return Deps{
		Clock:     wallclock.NewSystem(),
		Executor:  remedy.NewShellExecutor(),
		Rebooter:  reboot.NewSystemRebooter(),
		NTPClient: &sntp.DefaultNTPClient{},
	}
}

// NewRootCommand builds the datemon command tree around deps.
func NewRootCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datemon",
		Short: "Monitor system date and trigger a reaction if it jumps too far ahead",
		Long: `datemon samples the wall clock once per second. When the clock moves
forward by more than the threshold between two samples it reports the jump,
optionally runs a remediation command, waits for the grace period and checks
again. If the jump persists and --reboot is set, the host is rebooted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger.SetVerbosity(cfg.Verbosity, cmd.ErrOrStderr())
			return run(cmd.Context(), cfg, deps, cmd.OutOrStdout())
		},
	}
	config.RegisterFlags(cmd.PersistentFlags())
	cmd.AddCommand(newConfigCommand())
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return config.FromViper(v)
}

// run wires the components and blocks in the monitor loop.
func run(ctx context.Context, cfg *config.Config, deps Deps, out io.Writer) error {
	escalator := reboot.NewEscalator(deps.Rebooter, deps.Clock, out, cfg.RebootInterval)
	controller := remedy.NewController(cfg, deps.Clock, deps.Executor, escalator, out)
	if cfg.NTPServer != "" {
		controller.SetProbe(sntp.NewProbe(cfg.NTPServer, deps.NTPClient))
	}
	return monitor.New(cfg, deps.Clock, controller, out).Run(ctx)
}

// Execute runs datemon with the process arguments and exits non-zero on a
// fatal error.
func Execute(ctx context.Context) {
	if err := NewRootCommand(DefaultDeps()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "datemon: %s\n", err)
		os.Exit(1)
	}
}
