// Package wrap builds self-installing scripts and reads them back.
package wrap

import (
	"cmp"
	_ "crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/tqbf/wrapsh/pkg/bundle"
	"github.com/tqbf/wrapsh/pkg/manifest"
	"github.com/tqbf/wrapsh/pkg/paths"
	"github.com/tqbf/wrapsh/pkg/script"
	"github.com/tqbf/wrapsh/pkg/settings"
)

// Result describes a finished script.
type Result struct {
	Path    string
	Name    string
	BinName string
	Footer  bundle.Footer
	Skipped []string
	Digest  digest.Digest
}

// Build wraps the project in dir into <out_dir>/<shell_name>.sh. A relative
// out_dir is taken relative to dir. The script text is rendered before any
// file is touched, so template problems never leave partial output.
func Build(dir string, s settings.Settings) (*Result, error) {
	name, err := manifest.Name(dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("project", "name", name)

	res := &Result{
		Name:    name,
		BinName: cmp.Or(s.BinName, name),
	}
	text, err := script.Render(script.Options{
		Title:    name,
		BinName:  res.BinName,
		Optimize: s.Optimize,
	})
	if err != nil {
		return nil, fmt.Errorf("render script: %w", err)
	}
	shellName := cmp.Or(s.ShellName, name)
	if err := script.ValidateName(shellName); err != nil {
		return nil, fmt.Errorf("shell name: %w", err)
	}

	outDir := cmp.Or(s.OutDir, ".")
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(dir, outDir)
	}
	res.Path = filepath.Join(outDir, shellName+".sh")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}

	excludes := append(slices.Clone(paths.DefaultExcludes), s.Excludes...)
	walker := bundle.NewWalker(dir, excludes...).Omit(settings.FileName)
	if rel, err := filepath.Rel(dir, res.Path); err == nil &&
		paths.IsWithinDir(dir, res.Path) {
		walker.Omit(filepath.ToSlash(rel))
	}

	res.Footer, err = writeScript(res.Path, text, dir, walker)
	if err != nil {
		return nil, err
	}
	res.Skipped = walker.Skipped()
	if len(res.Skipped) > 0 {
		slog.Warn("skipped unreadable paths",
			"count", len(res.Skipped),
			"paths", res.Skipped,
		)
	}

	res.Digest, err = fileDigest(res.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("wrote script",
		"path", res.Path,
		"files", res.Footer.Count,
		"digest", res.Digest,
	)
	return res, nil
}

func writeScript(
	out, text, dir string, walker *bundle.Walker,
) (bundle.Footer, error) {
	f, err := os.OpenFile(
		out, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0755,
	)
	if err != nil {
		return bundle.Footer{}, fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return bundle.Footer{}, fmt.Errorf("write script: %w", err)
	}
	w, err := bundle.NewWriter(f)
	if err != nil {
		return bundle.Footer{}, err
	}
	for rel := range walker.Files() {
		slog.Info("file", "path", rel)
		if err := w.AddFile(dir, rel); err != nil {
			return bundle.Footer{}, err
		}
	}
	footer, err := w.Close()
	if err != nil {
		return bundle.Footer{}, err
	}
	if err := f.Chmod(0755); err != nil {
		return bundle.Footer{}, fmt.Errorf("chmod %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return bundle.Footer{}, fmt.Errorf("close %s: %w", out, err)
	}
	return footer, nil
}

func fileDigest(p string) (digest.Digest, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", p, err)
	}
	return d, nil
}

// EntryInfo summarizes one bundled file.
type EntryInfo struct {
	Path   string
	Size   int
	Digest digest.Digest
}

// List reads the bundle of the script at p without writing anything.
func List(p string) (bundle.Footer, []EntryInfo, error) {
	f, err := os.Open(p)
	if err != nil {
		return bundle.Footer{}, nil, err
	}
	defer f.Close()

	br, err := bundle.NewReader(f)
	if err != nil {
		return bundle.Footer{}, nil, fmt.Errorf("%s: %w", p, err)
	}
	var infos []EntryInfo
	for {
		e, err := br.Next()
		if err == io.EOF {
			return br.Footer(), infos, nil
		}
		if err != nil {
			return bundle.Footer{}, nil, fmt.Errorf("%s: %w", p, err)
		}
		infos = append(infos, EntryInfo{
			Path:   e.Path,
			Size:   len(e.Data),
			Digest: digest.FromBytes(e.Data),
		})
	}
}

// Unpack restores the bundle of the script at p below dest.
func Unpack(p, dest string) (int, error) {
	f, err := os.Open(p)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, fmt.Errorf("create dest: %w", err)
	}
	n, err := bundle.Extract(f, dest)
	if err != nil {
		return n, fmt.Errorf("%s: %w", p, err)
	}
	return n, nil
}
