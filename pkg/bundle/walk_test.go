package bundle

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(w *Walker) []string {
	files := slices.Collect(w.Files())
	slices.Sort(files)
	return files
}

func TestWalkerFiles(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{
		"main.go":           "package main",
		"src/util.go":       "package src",
		"src/deep/x/y.txt":  "y",
		"node_modules/a.js": "module",
		"test.pyc":          "bytecode",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "emptydir"), 0755))

	w := NewWalker(dir, "node_modules", "*.pyc")
	assert.Equal(t,
		[]string{"main.go", "src/deep/x/y.txt", "src/util.go"},
		collect(w),
	)
	assert.Empty(t, w.Skipped())
}

func TestWalkerOmitExactPaths(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{
		"hello.sh":                     "#!/bin/sh",
		"scripts/hello.sh":             "#!/bin/sh",
		"wrap_install.toml":            "",
		"examples/a/wrap_install.toml": "",
		"[ab].sh":                      "glob-looking name",
		"a.sh":                         "plain",
	})

	w := NewWalker(dir).Omit("hello.sh", "./wrap_install.toml", "[ab].sh")
	assert.Equal(t,
		[]string{"a.sh", "examples/a/wrap_install.toml", "scripts/hello.sh"},
		collect(w),
	)
}

func TestWalkerSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{"real.txt": "data"})
	err := os.Symlink(
		filepath.Join(dir, "real.txt"),
		filepath.Join(dir, "link.txt"),
	)
	if err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	assert.Equal(t, []string{"real.txt"}, collect(NewWalker(dir)))
}

func TestWalkerSkipsUnreadableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{
		"ok.txt":         "fine",
		"locked/hidden":  "secret",
		"later/also.txt": "fine",
	})
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	w := NewWalker(dir)
	assert.Equal(t, []string{"later/also.txt", "ok.txt"}, collect(w))
	assert.Equal(t, []string{"locked"}, w.Skipped())
}

func TestWalkerMissingRoot(t *testing.T) {
	w := NewWalker(filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, collect(w))
	assert.Len(t, w.Skipped(), 1)
}

func TestWalkerNotRestartable(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{"a": "1", "b": "2"})

	w := NewWalker(dir)
	assert.Len(t, collect(w), 2)
	assert.Empty(t, collect(w))
}

func TestWalkerStopsEarly(t *testing.T) {
	dir := t.TempDir()
	makeTree(t, dir, map[string]string{"a": "1", "b": "2", "c": "3"})

	seen := 0
	for range NewWalker(dir).Files() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}
