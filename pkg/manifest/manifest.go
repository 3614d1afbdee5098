// Package manifest reads the name of the project being wrapped.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// FileName is the manifest looked up in the project directory.
const FileName = "go.mod"

// ErrNoModule is returned when go.mod has no module directive.
var ErrNoModule = errors.New("go.mod has no module directive")

// Name returns the project name declared by dir/go.mod.
func Name(dir string) (string, error) {
	p := filepath.Join(dir, FileName)
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}
	return Parse(p, data)
}

// Parse extracts the project name from go.mod contents: the last element of
// the module path without a major version suffix, so example.com/tool/v2
// is named "tool".
func Parse(filename string, data []byte) (string, error) {
	f, err := modfile.ParseLax(filename, data, nil)
	if err != nil {
		return "", fmt.Errorf("parse manifest: %w", err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return "", ErrNoModule
	}
	prefix, _, ok := module.SplitPathVersion(f.Module.Mod.Path)
	if !ok {
		prefix = f.Module.Mod.Path
	}
	return path.Base(prefix), nil
}
