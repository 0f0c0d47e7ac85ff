// Package memstore is a dependency-free, in-memory implementation of the
// store package's branch/commit/transaction/tree interfaces: a fast,
// deterministic backend the engine and its tests run against without a
// real filesystem or network in the loop.
package memstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nexusbridge/hubstore/internal/store"
)

// memTree is a plain-value snapshot of a filesystem: file contents plus
// explicit empty-directory markers (needed because a commit marker
// directory, e.g. <repo>/commit/<id>/, may legitimately hold no files
// yet). It satisfies store.Tree directly and also backs transaction's
// mutable working copy.
type memTree struct {
	files map[string]string
	dirs  map[string]struct{}
}

func newMemTree() *memTree {
	return &memTree{files: map[string]string{}, dirs: map[string]struct{}{}}
}

func (t *memTree) clone() *memTree {
	out := newMemTree()
	for k, v := range t.files {
		out.files[k] = v
	}
	for k := range t.dirs {
		out.dirs[k] = struct{}{}
	}
	return out
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

func (t *memTree) ExistsFile(path string) (bool, error) {
	_, ok := t.files[clean(path)]
	return ok, nil
}

func (t *memTree) ExistsDir(path string) (bool, error) {
	path = clean(path)
	if path == "" {
		return true, nil
	}
	if _, ok := t.dirs[path]; ok {
		return true, nil
	}
	prefix := path + "/"
	for f := range t.files {
		if strings.HasPrefix(f, prefix) {
			return true, nil
		}
	}
	for d := range t.dirs {
		if strings.HasPrefix(d, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTree) ReadFile(path string) (string, error) {
	v, ok := t.files[clean(path)]
	if !ok {
		return "", fmt.Errorf("memstore: file %q does not exist", path)
	}
	return v, nil
}

func (t *memTree) ReadDir(path string) ([]string, error) {
	path = clean(path)
	prefix := ""
	if path != "" {
		prefix = path + "/"
	}
	names := map[string]struct{}{}
	for f := range t.files {
		if name, ok := strings.CutPrefix(f, prefix); ok && name != "" {
			names[firstSegment(name)] = struct{}{}
		}
	}
	for d := range t.dirs {
		if name, ok := strings.CutPrefix(d, prefix); ok && name != "" {
			names[firstSegment(name)] = struct{}{}
		}
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func firstSegment(path string) string {
	if idx := strings.Index(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return path
}

func (t *memTree) Diff(other store.Tree) ([]store.PathChange, error) {
	o, ok := other.(*memTree)
	if !ok {
		return nil, fmt.Errorf("memstore: cannot diff against a foreign tree implementation")
	}
	return diffFiles(o.files, t.files), nil
}

// diffFiles reports the changes that turn oldFiles into newFiles.
func diffFiles(oldFiles, newFiles map[string]string) []store.PathChange {
	var out []store.PathChange
	for path, content := range newFiles {
		old, existed := oldFiles[path]
		switch {
		case !existed:
			out = append(out, store.PathChange{Path: path, Type: store.Added})
		case old != content:
			out = append(out, store.PathChange{Path: path, Type: store.Updated})
		}
	}
	for path := range oldFiles {
		if _, ok := newFiles[path]; !ok {
			out = append(out, store.PathChange{Path: path, Type: store.Removed})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
