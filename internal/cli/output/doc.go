// Package output renders trakjobs-cli results.
//
// Every command prints through a Formatter: table (default, with a wide
// mode for extra columns), json or yaml for scripting. Spinner and
// ProgressBar report long calls such as logo uploads on stderr.
package output
