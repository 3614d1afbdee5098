package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/wrapsh/pkg/settings"
)

const appVersion = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wrapsh",
		Usage: "wrap a Go project into a self-installing shell script",
		Before: func(c *cli.Context) error {
			mode, err := settings.ParseMode(c.String("mode"))
			if err != nil {
				mode = settings.Normal
			}
			configureLogging(mode)
			return nil
		},
		Flags:  buildFlags(),
		Action: buildAction,
		Commands: []*cli.Command{
			extractCmd(),
			listCmd(),
			{
				Name:  "version",
				Usage: "print version",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, appVersion)
					return nil
				},
			},
		},
	}
}

func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Value: ".",
			Usage: "project directory",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "settings file (default <dir>/" + settings.FileName + ")",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "output mode: normal, quiet or verbose",
		},
		&cli.BoolFlag{
			Name:  "unoptimized",
			Usage: "build a debug binary on install",
		},
		&cli.StringFlag{
			Name:  "bin-name",
			Usage: "installed binary name, or 'default'",
		},
		&cli.StringFlag{
			Name:  "shell-name",
			Usage: "script name without .sh, or 'default'",
		},
		&cli.StringFlag{
			Name:  "out-dir",
			Usage: "directory for the script, relative to --dir",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "exclude pattern (repeatable)",
		},
	}
}

// loadSettings merges the settings file with command line overrides.
func loadSettings(c *cli.Context) (settings.Settings, error) {
	path := c.String("config")
	if path == "" {
		path = filepath.Join(c.String("dir"), settings.FileName)
	}
	s, err := settings.Load(path)
	if err != nil {
		return settings.Settings{}, err
	}

	if c.IsSet("mode") {
		if s.Mode, err = settings.ParseMode(c.String("mode")); err != nil {
			return settings.Settings{}, err
		}
	}
	if c.Bool("unoptimized") {
		s.Optimize = false
	}
	s.BinName = settings.Override(s.BinName, c.String("bin-name"))
	s.ShellName = settings.Override(s.ShellName, c.String("shell-name"))
	if c.IsSet("out-dir") {
		s.OutDir = c.String("out-dir")
	}
	s.Excludes = append(s.Excludes, c.StringSlice("exclude")...)
	return s, nil
}

// configureLogging installs the default logger at the level of mode.
func configureLogging(mode settings.Mode) {
	slog.SetDefault(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: mode.Level(),
		}),
	))
}
