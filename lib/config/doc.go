// Package config holds datemon's runtime configuration.
//
// # Sources
//
// Every setting is a command-line flag. Each flag can also be supplied
// through the environment with the DATEMON_ prefix, dashes replaced by
// underscores (DATEMON_THRESHOLD, DATEMON_EXEC_TIMEOUT, ...). An explicitly
// set flag always wins over the environment, which wins over the built-in
// default. There is no configuration file.
//
// # Units
//
// Durations are given in seconds on the command line and in the environment,
// fractional values allowed, and converted to time.Duration once at startup.
// The resulting Config is immutable for the lifetime of the process.
package config
