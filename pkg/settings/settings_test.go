package settings

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"normal":  Normal,
		"QUIET":   Quiet,
		"Verbose": Verbose,
		" quiet ": Quiet,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, want, mustParse(t, got.String()))
	}

	_, err := ParseMode("loud")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func mustParse(t *testing.T, s string) Mode {
	t.Helper()
	m, err := ParseMode(s)
	require.NoError(t, err)
	return m
}

func TestModeLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Normal.Level())
	assert.Equal(t, slog.LevelWarn, Quiet.Level())
	assert.Equal(t, slog.LevelDebug, Verbose.Level())
}

func TestParse(t *testing.T) {
	s, err := Parse(`
optimize = false
bin_name = "tool"
shell_name = "install-tool"
mode = "Verbose"
out_dir = "dist"
exclude = ["testdata", "*.log"]
`)
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Optimize:  false,
		BinName:   "tool",
		ShellName: "install-tool",
		OutDir:    "dist",
		Mode:      Verbose,
		Excludes:  []string{"testdata", "*.log"},
	}, s)
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.True(t, s.Optimize)

	s, err = Parse(`bin_name = "x"`)
	require.NoError(t, err)
	assert.True(t, s.Optimize)
	assert.Equal(t, Normal, s.Mode)
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		`mode = "loud"`,
		`optimize = "yes"`,
		`bin_name = `,
	} {
		_, err := Parse(doc)
		require.Error(t, err, doc)
		assert.Contains(t, err.Error(), "invalid settings", doc)
	}

	_, err := Parse(`mode = "loud"`)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`mode = "quiet"`), 0644))
	s, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, Quiet, s.Mode)
}

func TestOverride(t *testing.T) {
	assert.Equal(t, "file", Override("file", ""))
	assert.Equal(t, "flag", Override("file", "flag"))
	assert.Equal(t, "", Override("file", "default"))
	assert.Equal(t, "flag", Override("", "flag"))
}

func TestString(t *testing.T) {
	s := Default()
	s.BinName = "tool"
	assert.Equal(t,
		"optimize: true\n"+
			"bin name: tool\n"+
			"shell name: default\n"+
			"out dir: default\n"+
			"mode: normal",
		s.String(),
	)
}
