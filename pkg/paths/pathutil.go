// Package paths holds the path rules shared by the bundle walker and the
// extractor.
package paths

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrEmpty     = errors.New("empty path")
	ErrAbsolute  = errors.New("absolute path")
	ErrEscapes   = errors.New("path escapes base directory")
	ErrNullByte  = errors.New("path contains null byte")
	ErrNoElement = errors.New("path names no file")
)

// ValidateRelPath checks that p is a slash-separated path naming a file
// strictly below its base directory.
func ValidateRelPath(p string) error {
	switch {
	case p == "":
		return ErrEmpty
	case strings.ContainsRune(p, 0):
		return ErrNullByte
	case path.IsAbs(p), filepath.IsAbs(p), filepath.VolumeName(p) != "":
		return fmt.Errorf("%w: %s", ErrAbsolute, p)
	}
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == "." {
		return fmt.Errorf("%w: %s", ErrNoElement, p)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %s", ErrEscapes, p)
	}
	return nil
}

// IsWithinDir reports whether full is dir or lies below it.
func IsWithinDir(dir, full string) bool {
	rel, err := filepath.Rel(dir, full)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." &&
		!strings.HasPrefix(rel, "../") &&
		!filepath.IsAbs(rel)
}
