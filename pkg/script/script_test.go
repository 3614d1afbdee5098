package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := Render(Options{
		Title:    "hello",
		BinName:  "hi",
		Optimize: true,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#!/bin/sh\n"))
	assert.True(t, strings.HasSuffix(out, "exit 0\n"))
	assert.Contains(t, out, "# Self-installing bundle for: hello\n")
	assert.Contains(t, out, `go build -trimpath -ldflags="-s -w" -o "$work/bin/hi" .`)
	assert.Contains(t, out, `mv "$work/bin/hi" "$dest/"`)
	assert.Contains(t, out, `echo "installed $dest/hi"`)
	assert.NotContains(t, out, "-gcflags")

	head, rest, ok := strings.Cut(out, anchorExtractor)
	require.True(t, ok)
	assert.NotEmpty(t, head)
	src, _, ok := strings.Cut(rest, "\nWRAPSH_EXTRACTOR\n")
	require.True(t, ok)
	assert.Equal(t, strings.TrimSuffix(extractor, "\n"), src)
}

func TestRenderUnoptimized(t *testing.T) {
	out, err := Render(Options{Title: "hello", BinName: "hello"})
	require.NoError(t, err)

	assert.Contains(t, out, `go build -gcflags=all="-N -l" -o "$work/bin/hello" .`)
	assert.NotContains(t, out, "-trimpath")
}

func TestRenderInvalidNames(t *testing.T) {
	for _, o := range []Options{
		{Title: "", BinName: "ok"},
		{Title: "ok", BinName: ""},
		{Title: "ok", BinName: `x"; rm -rf /`},
		{Title: "multi\nline", BinName: "ok"},
		{Title: "ok", BinName: "../up"},
		{Title: "ok", BinName: "-flag"},
	} {
		_, err := Render(o)
		assert.ErrorIs(t, err, ErrInvalidName, "%+v", o)
	}
}

func TestRenderMissingAnchor(t *testing.T) {
	opts := Options{Title: "t", BinName: "b", Optimize: true}
	for _, anchor := range []string{
		anchorTitle,
		anchorExtractor,
		anchorOutput,
		anchorMove,
		anchorInstalled,
	} {
		broken := strings.Replace(tmpl, anchor, "", 1)
		_, err := RenderTemplate(broken, opts)
		assert.ErrorIs(t, err, ErrAnchorNotFound, "anchor %q", anchor)
	}

	broken := strings.Replace(tmpl, releaseFlags, "", 1)
	_, err := RenderTemplate(broken, opts)
	assert.NoError(t, err)

	opts.Optimize = false
	_, err = RenderTemplate(broken, opts)
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestSplice(t *testing.T) {
	out, err := Splice("a[]b[]", "[", "x")
	require.NoError(t, err)
	assert.Equal(t, "a[x]b[]", out)

	_, err = Splice("abc", "z", "x")
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestReplace(t *testing.T) {
	out, err := Replace("run --release now", "run", " --release", "")
	require.NoError(t, err)
	assert.Equal(t, "run now", out)

	_, err = Replace("run --debug", "run", " --release", "")
	assert.ErrorIs(t, err, ErrAnchorNotFound)

	_, err = Replace("walk", "run", "", "")
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}
