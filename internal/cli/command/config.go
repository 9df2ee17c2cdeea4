package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/trakjobs/trakjobs-go/internal/cli/config"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and edit the CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPathAction,
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with default values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:        "set",
				Usage:       "Change one key in the configuration file",
				ArgsUsage:   "KEY VALUE",
				Description: "Known keys:\n   " + strings.Join(config.Keys(), "\n   "),
				Action:      configSet,
			},
		},
	}
}

// configPath returns the file the invocation reads its configuration from.
func configPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

// loadConfigFile loads the configuration with path as the only file source.
func loadConfigFile(path string) (*config.CLIConfig, error) {
	return config.Load(path, nil)
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	p, err := newPrinter(c, cfg)
	if err != nil {
		return err
	}
	if p.Interactive() {
		return p.Print(cfg.Flat())
	}
	return p.Print(cfg.ToMap())
}

func configPathAction(c *cli.Context) error {
	_, err := fmt.Fprintln(c.App.Writer, configPath(c))
	return err
}

func configInit(c *cli.Context) error {
	path := configPath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return err
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return domain.ErrInvalidArgument.WithDetails("usage: config set KEY VALUE")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)
	path := configPath(c)
	if err := config.Set(path, key, value); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.App.Writer, "Set %s in %s\n", key, path)
	return err
}
