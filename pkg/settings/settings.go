// Package settings loads the wrap_install.toml settings file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the settings file looked up in the project directory.
const FileName = "wrap_install.toml"

// ErrInvalidMode is returned for a mode other than normal, quiet or verbose.
var ErrInvalidMode = errors.New(
	"invalid mode, valid values are: verbose, quiet, and normal",
)

// Mode selects how chatty a run is.
type Mode int

const (
	Normal Mode = iota
	Quiet
	Verbose
)

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return Normal, nil
	case "quiet":
		return Quiet, nil
	case "verbose":
		return Verbose, nil
	}
	return Normal, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) String() string {
	switch m {
	case Quiet:
		return "quiet"
	case Verbose:
		return "verbose"
	default:
		return "normal"
	}
}

// Level maps the mode onto a log level.
func (m Mode) Level() slog.Level {
	switch m {
	case Quiet:
		return slog.LevelWarn
	case Verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Settings is the effective configuration of a build. Empty names mean
// "derive from the project name".
type Settings struct {
	Optimize  bool
	BinName   string
	ShellName string
	OutDir    string
	Mode      Mode
	Excludes  []string
}

// file mirrors the TOML document. Optimize is a pointer so an absent key
// keeps the default.
type file struct {
	Optimize  *bool    `toml:"optimize"`
	BinName   string   `toml:"bin_name"`
	ShellName string   `toml:"shell_name"`
	Mode      string   `toml:"mode"`
	OutDir    string   `toml:"out_dir"`
	Exclude   []string `toml:"exclude"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{Optimize: true, Mode: Normal}
}

// Load reads settings from path. A missing file yields Default.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes a settings document.
func Parse(doc string) (Settings, error) {
	var f file
	md, err := toml.Decode(doc, &f)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown settings key", "key", key.String())
	}

	s := Default()
	if f.Optimize != nil {
		s.Optimize = *f.Optimize
	}
	if f.Mode != "" {
		if s.Mode, err = ParseMode(f.Mode); err != nil {
			return Settings{}, fmt.Errorf("invalid settings: %w", err)
		}
	}
	s.BinName = f.BinName
	s.ShellName = f.ShellName
	s.OutDir = f.OutDir
	s.Excludes = f.Exclude
	return s, nil
}

// Override is a name given on the command line. The literal "default"
// clears any name from the settings file.
func Override(current, flag string) string {
	switch flag {
	case "":
		return current
	case "default":
		return ""
	}
	return flag
}

func orDefault(name string) string {
	if name == "" {
		return "default"
	}
	return name
}

func (s Settings) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "optimize: %t\n", s.Optimize)
	fmt.Fprintf(&b, "bin name: %s\n", orDefault(s.BinName))
	fmt.Fprintf(&b, "shell name: %s\n", orDefault(s.ShellName))
	fmt.Fprintf(&b, "out dir: %s\n", orDefault(s.OutDir))
	fmt.Fprintf(&b, "mode: %s", s.Mode)
	return b.String()
}
