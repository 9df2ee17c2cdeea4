package command

import (
	"github.com/urfave/cli/v2"

	"github.com/trakjobs/trakjobs-go/internal/cli/output"
	"github.com/trakjobs/trakjobs-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "trakjobs-cli",
		Usage:                "TrakJobs command-line client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			RegisterCommand(),
			PasswordCommand(),
			WhoamiCommand(),
			ClientCommand(),
			BrowseCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{},
		After: func(c *cli.Context) error {
			return closeEnv(c)
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.trakjobs/cli.yaml)",
			EnvVars: []string{"TRAKJOBS_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "API base URL, e.g. https://api.trakjobs.com/api/v1",
			EnvVars: []string{"TRAKJOBS_API_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log API requests (debug level)",
		},
		&cli.StringFlag{
			Name:  "session-backend",
			Usage: "Session storage: file, badger, memory",
		},
		&cli.StringFlag{
			Name:  "session-dir",
			Usage: "Directory holding the session (default ~/.trakjobs)",
		},
	}
}

// flagOverrides maps explicitly set global flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"server":          "api.base_url",
		"output":          "output",
		"session-backend": "session.backend",
		"session-dir":     "session.dir",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

// ErrorText renders an error returned by App.Run for stderr.
func ErrorText(err error) string {
	return output.ErrorText(err)
}
