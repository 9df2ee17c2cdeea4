// Package buildinfo reports the version of the trakjobs-cli binary.
//
// Version is stamped by the release build; development builds fall back to
// the VCS revision recorded by the go tool. The version also appears in the
// User-Agent header sent to the TrakJobs API.
package buildinfo
