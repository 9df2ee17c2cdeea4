// Package confloader loads layered configuration with koanf.
//
// Load merges, lowest priority first, the defaults already in the target
// struct, a YAML file, TRAKJOBS_SECTION_KEY environment variables and
// dotted-key overrides taken from flags.
//
// Watcher reports edits to the configuration file so long-running
// commands can reload settings such as the log level.
package confloader
