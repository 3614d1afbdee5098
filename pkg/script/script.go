// Package script renders the text half of an install script. The binary
// bundle is appended afterwards by package bundle.
package script

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// tmpl is the install script. Its final line is "exit 0" so the shell never
// reads the bundle that follows.
//
//go:embed template.sh
var tmpl string

// extractor is a standalone Go program the script compiles on the target
// to restore the bundle.
//
//go:embed extractor.go.txt
var extractor string

// Anchors are located by exact substring search.
const (
	anchorTitle     = "# Self-installing bundle for: "
	anchorExtractor = "cat > \"$work/extract/main.go\" <<'WRAPSH_EXTRACTOR'\n"
	anchorBuild     = "(cd \"$work/project\" && go build"
	anchorOutput    = "-o \"$work/bin/"
	anchorMove      = "mv \"$work/bin/"
	anchorInstalled = "echo \"installed $dest/"

	releaseFlags = ` -trimpath -ldflags="-s -w"`
	debugFlags   = ` -gcflags=all="-N -l"`
)

var (
	// ErrAnchorNotFound is returned when the template lacks an anchor.
	ErrAnchorNotFound = errors.New("template anchor not found")

	// ErrInvalidName is returned for names that are unsafe to place in
	// shell text.
	ErrInvalidName = errors.New("invalid name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*$`)

// ValidateName reports whether n can be used as a file name in shell text.
func ValidateName(n string) error {
	if !validName.MatchString(n) {
		return fmt.Errorf("%w: %q", ErrInvalidName, n)
	}
	return nil
}

// Options control the generated script.
type Options struct {
	// Title names the project in the script header.
	Title string
	// BinName is the name of the installed binary.
	BinName string
	// Optimize selects a stripped release build over a debug build.
	Optimize bool
}

// Render produces the script text for opts.
func Render(opts Options) (string, error) {
	return RenderTemplate(tmpl, opts)
}

// RenderTemplate applies opts to an arbitrary template carrying the same
// anchors as the built-in one. Splices run from the end of the text back
// to the start so inserted text is never searched.
func RenderTemplate(text string, opts Options) (string, error) {
	for _, n := range []string{opts.Title, opts.BinName} {
		if err := ValidateName(n); err != nil {
			return "", err
		}
	}

	var err error
	splice := func(anchor, insert string) {
		if err == nil {
			text, err = Splice(text, anchor, insert)
		}
	}

	splice(anchorInstalled, opts.BinName)
	splice(anchorMove, opts.BinName)
	splice(anchorOutput, opts.BinName)
	if !opts.Optimize && err == nil {
		text, err = Replace(text, anchorBuild, releaseFlags, debugFlags)
	}
	splice(anchorExtractor, extractor)
	splice(anchorTitle, opts.Title)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Splice inserts insert immediately after the first occurrence of anchor.
func Splice(text, anchor, insert string) (string, error) {
	i := strings.Index(text, anchor)
	if i < 0 {
		return "", fmt.Errorf("%w: %q", ErrAnchorNotFound, anchor)
	}
	i += len(anchor)
	return text[:i] + insert + text[i:], nil
}

// Replace swaps old for new where old directly follows the first
// occurrence of anchor.
func Replace(text, anchor, old, new string) (string, error) {
	i := strings.Index(text, anchor)
	if i < 0 {
		return "", fmt.Errorf("%w: %q", ErrAnchorNotFound, anchor)
	}
	i += len(anchor)
	if !strings.HasPrefix(text[i:], old) {
		return "", fmt.Errorf(
			"%w: %q after %q", ErrAnchorNotFound, old, anchor,
		)
	}
	return text[:i] + new + text[i+len(old):], nil
}
