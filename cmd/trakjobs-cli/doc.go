// Package main provides the entry point for trakjobs-cli.
//
// The CLI signs in to the TrakJobs API and manages the clients of the
// signed-in vendor:
//
//   - Account: login, logout, register, password forgot/reset, whoami
//   - Clients: list, get, create, update, delete, search, logo
//   - browse: interactive list with search, filters, sorting and paging
//   - config: show, path, init, set
//
// Usage:
//
//	trakjobs-cli login -e owner@example.com
//	trakjobs-cli client list --status active -o json
//	trakjobs-cli browse
package main
