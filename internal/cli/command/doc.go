// Package command defines the trakjobs-cli command tree using
// urfave/cli/v2.
//
//   - root.go: App, global flags, error rendering
//   - env.go: per-invocation wiring (config, session, API client, services)
//   - auth.go: login, logout, register, password, whoami
//   - client.go: client list/get/create/update/delete/search/logo
//   - browse.go: interactive client list
//   - config.go: CLI configuration file
//
// Actions write results to App.Writer and notices to App.ErrWriter.
package command
