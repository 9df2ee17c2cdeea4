// Package config holds the trakjobs-cli configuration (~/.trakjobs/cli.yaml).
//
// Values are resolved in order: built-in defaults, the YAML file,
// TRAKJOBS_* environment variables, then command-line flags.
package config
