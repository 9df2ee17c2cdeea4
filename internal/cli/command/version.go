package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/trakjobs/trakjobs-go/internal/cli/output"
	"github.com/trakjobs/trakjobs-go/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "short",
				Usage: "Print the version number only",
			},
		},
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			if c.Bool("short") {
				_, err := fmt.Fprintln(c.App.Writer, info.Version)
				return err
			}

			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				_, err := fmt.Fprintf(c.App.Writer, "trakjobs-cli %s\n  commit:   %s\n  built:    %s\n  go:       %s\n  platform: %s\n",
					info.Version, info.Commit, info.BuildTime, info.GoVersion, info.Platform)
				return err
			}
			p := &output.Printer{Out: c.App.Writer, Err: c.App.ErrWriter, Format: format}
			return p.Print(info)
		},
	}
}
