package paths

import (
	"path"
	"strings"
)

// DefaultExcludes are left out of every bundle.
var DefaultExcludes = []string{".git", ".DS_Store"}

// ExcludeMatcher matches slash-separated relative paths against gitignore
// style patterns:
//
//	name     any path element equal to name (globs allowed: *.o, ?.tmp)
//	dir/     same as dir
//	a/*.go   the whole path, anchored at the root
//	**/x     x at any depth; a/** everything below a
type ExcludeMatcher struct {
	patterns []string
}

func NewExcludeMatcher(patterns []string) *ExcludeMatcher {
	m := &ExcludeMatcher{}
	for _, p := range patterns {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p != "" {
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// Match reports whether rel is excluded.
func (m *ExcludeMatcher) Match(rel string) bool {
	for _, pat := range m.patterns {
		if match(pat, rel) {
			return true
		}
	}
	return false
}

func match(pat, rel string) bool {
	if before, after, ok := strings.Cut(pat, "**"); ok {
		return matchDeep(
			strings.TrimSuffix(before, "/"),
			strings.TrimPrefix(after, "/"),
			rel,
		)
	}
	if strings.Contains(pat, "/") {
		ok, _ := path.Match(pat, rel)
		return ok
	}
	for _, elem := range strings.Split(rel, "/") {
		if ok, _ := path.Match(pat, elem); ok {
			return true
		}
	}
	return false
}

// matchDeep handles a single ** between an anchored prefix and a suffix
// that may match any trailing run of path elements.
func matchDeep(prefix, suffix, rel string) bool {
	if prefix != "" {
		if rel == prefix {
			return suffix == ""
		}
		var ok bool
		if rel, ok = strings.CutPrefix(rel, prefix+"/"); !ok {
			return false
		}
	}
	if suffix == "" {
		return true
	}
	elems := strings.Split(rel, "/")
	for i := range elems {
		tail := strings.Join(elems[i:], "/")
		if ok, _ := path.Match(suffix, tail); ok {
			return true
		}
	}
	return false
}
