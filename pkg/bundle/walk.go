package bundle

import (
	"io/fs"
	"iter"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/tqbf/wrapsh/pkg/paths"
)

// Walker lists the regular files below a root directory.
//
// Directories that cannot be read and entries whose metadata cannot be
// retrieved are skipped rather than failing the walk. Their paths are
// recorded and available from Skipped once iteration ends.
type Walker struct {
	root    string
	matcher *paths.ExcludeMatcher
	omit    map[string]bool
	skipped []string
	used    bool
}

// NewWalker returns a walker over root that leaves out paths matching any
// of the exclude patterns.
func NewWalker(root string, excludes ...string) *Walker {
	return &Walker{
		root:    root,
		matcher: paths.NewExcludeMatcher(excludes),
	}
}

// Omit leaves out the files at exactly these slash-separated relative
// paths. Unlike exclude patterns they never match at other depths.
func (w *Walker) Omit(rels ...string) *Walker {
	if w.omit == nil {
		w.omit = make(map[string]bool)
	}
	for _, rel := range rels {
		w.omit[path.Clean(rel)] = true
	}
	return w
}

// Files yields slash-separated paths relative to the root, in directory
// listing order. The sequence can be ranged over once.
func (w *Walker) Files() iter.Seq[string] {
	return func(yield func(string) bool) {
		if w.used {
			return
		}
		w.used = true

		// The callback never returns an error of its own.
		_ = filepath.WalkDir(
			w.root,
			func(p string, d fs.DirEntry, err error) error {
				rel, relErr := filepath.Rel(w.root, p)
				if relErr != nil {
					return nil
				}
				rel = filepath.ToSlash(rel)
				if err != nil {
					w.skip(rel, err)
					if d != nil && d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if rel == "." {
					return nil
				}
				if w.matcher.Match(rel) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if d.IsDir() {
					return nil
				}
				if w.omit[rel] || !d.Type().IsRegular() {
					return nil
				}
				if _, err := d.Info(); err != nil {
					w.skip(rel, err)
					return nil
				}
				if !yield(rel) {
					return filepath.SkipAll
				}
				return nil
			},
		)
	}
}

func (w *Walker) skip(rel string, err error) {
	slog.Debug("skip unreadable", "path", rel, "err", err)
	w.skipped = append(w.skipped, rel)
}

// Skipped returns the paths the walk could not read.
func (w *Walker) Skipped() []string {
	return w.skipped
}
