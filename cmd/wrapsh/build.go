package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/wrapsh/pkg/settings"
	"github.com/tqbf/wrapsh/pkg/wrap"
)

func buildAction(c *cli.Context) error {
	if c.NArg() != 0 {
		return fmt.Errorf(
			"unexpected argument %q (see 'wrapsh help')",
			c.Args().First(),
		)
	}
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	configureLogging(s.Mode)
	slog.Debug("settings", "effective", s.String())

	out := c.App.Writer
	if s.Mode != settings.Quiet {
		fmt.Fprintf(out, "Running with settings:\n%s\n", s)
	}

	res, err := wrap.Build(c.String("dir"), s)
	if err != nil {
		return err
	}

	if s.Mode != settings.Quiet {
		fmt.Fprintf(out,
			"Wrote %s (%d files, %s)\n",
			res.Path, res.Footer.Count, res.Digest,
		)
		if n := len(res.Skipped); n > 0 {
			fmt.Fprintf(out, "Skipped %d unreadable paths\n", n)
		}
	}
	return nil
}
