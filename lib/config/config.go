package config

import (
	"strings"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var log = logger.GetGoI2PLogger()

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "DATEMON"

// Flag names, also used as viper keys.
const (
	KeyVerbose        = "verbose"
	KeyThreshold      = "threshold"
	KeyExec           = "exec"
	KeyExecTimeout    = "exec-timeout"
	KeyReboot         = "reboot"
	KeyNTPServer      = "ntp-server"
	KeyTick           = "tick"
	KeyRebootInterval = "reboot-interval"
)

// RegisterFlags defines datemon's flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.CountP(KeyVerbose, "v", "increase log verbosity (-v, -vv, -vvv)")
	fs.Float64P(KeyThreshold, "t", d.Threshold.Seconds(), "forward jump in seconds that counts as anomalous")
	fs.StringP(KeyExec, "e", "", "shell command to run when a jump is detected")
	fs.Float64(KeyExecTimeout, d.ExecTimeout.Seconds(), "seconds to wait after running the command before re-checking")
	fs.BoolP(KeyReboot, "r", false, "reboot the host if the jump persists")
	fs.String(KeyNTPServer, "", "NTP server queried for the clock offset when a jump is detected")
	fs.Float64(KeyTick, d.Tick.Seconds(), "sampling period in seconds")
	fs.Float64(KeyRebootInterval, d.RebootInterval.Seconds(), "seconds between forced reboot requests")
	_ = fs.MarkHidden(KeyTick)
	_ = fs.MarkHidden(KeyRebootInterval)
}

// NewViper returns a viper instance bound to fs and to the DATEMON_
// environment.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, oops.Wrapf(err, "failed to bind flags")
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyVerbose, d.Verbosity)
	v.SetDefault(KeyThreshold, d.Threshold.Seconds())
	v.SetDefault(KeyExec, d.Exec)
	v.SetDefault(KeyExecTimeout, d.ExecTimeout.Seconds())
	v.SetDefault(KeyReboot, d.Reboot)
	v.SetDefault(KeyNTPServer, d.NTPServer)
	v.SetDefault(KeyTick, d.Tick.Seconds())
	v.SetDefault(KeyRebootInterval, d.RebootInterval.Seconds())
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Verbosity: v.GetInt(KeyVerbose),
		Exec:      v.GetString(KeyExec),
		Reboot:    v.GetBool(KeyReboot),
		NTPServer: strings.TrimSpace(v.GetString(KeyNTPServer)),
	}

	var err error
	if cfg.Threshold, err = secondsKey(v, KeyThreshold); err != nil {
		return nil, err
	}
	if cfg.ExecTimeout, err = secondsKey(v, KeyExecTimeout); err != nil {
		return nil, err
	}
	if cfg.Tick, err = secondsKey(v, KeyTick); err != nil {
		return nil, err
	}
	if cfg.RebootInterval, err = secondsKey(v, KeyRebootInterval); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, oops.Wrapf(err, "invalid configuration")
	}

	log.WithFields(map[string]interface{}{
		"threshold":    cfg.Threshold.String(),
		"exec":         cfg.Exec,
		"exec_timeout": cfg.ExecTimeout.String(),
		"reboot":       cfg.Reboot,
		"ntp_server":   cfg.NTPServer,
		"tick":         cfg.Tick.String(),
	}).Debug("Loaded configuration")
	return cfg, nil
}

func secondsKey(v *viper.Viper, key string) (time.Duration, error) {
	d, err := SecondsToDuration(v.GetFloat64(key))
	if err != nil {
		return 0, oops.Wrapf(err, "invalid value for %s", key)
	}
	return d, nil
}

// yamlView is the YAML rendering of a Config, in the same units as the flags.
type yamlView struct {
	Verbose        int     `yaml:"verbose"`
	Threshold      float64 `yaml:"threshold"`
	Exec           string  `yaml:"exec"`
	ExecTimeout    float64 `yaml:"exec-timeout"`
	Reboot         bool    `yaml:"reboot"`
	NTPServer      string  `yaml:"ntp-server"`
	Tick           float64 `yaml:"tick"`
	RebootInterval float64 `yaml:"reboot-interval"`
}

// YAML renders the configuration with durations in seconds.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(yamlView{
		Verbose:        c.Verbosity,
		Threshold:      c.Threshold.Seconds(),
		Exec:           c.Exec,
		ExecTimeout:    c.ExecTimeout.Seconds(),
		Reboot:         c.Reboot,
		NTPServer:      c.NTPServer,
		Tick:           c.Tick.Seconds(),
		RebootInterval: c.RebootInterval.Seconds(),
	})
	if err != nil {
		return nil, oops.Wrapf(err, "failed to render configuration")
	}
	return out, nil
}
