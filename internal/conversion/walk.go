package conversion

import "github.com/nexusbridge/hubstore/internal/store"

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// walk depth-first traverses every directory under dir (dir itself
// included), collecting the path of any directory that contains leaf.
// A directory contributes both its own entry (if leaf exists there) and
// the union of its children's contributions — traversal never stops
// early just because a parent already matched.
func walk(tree store.Tree, dir, leaf string) ([]string, error) {
	var out []string

	hasLeaf, err := tree.ExistsFile(joinPath(dir, leaf))
	if err != nil {
		return nil, err
	}
	if hasLeaf {
		out = append(out, dir)
	}

	children, err := tree.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, name := range children {
		childPath := joinPath(dir, name)
		isDir, err := tree.ExistsDir(childPath)
		if err != nil {
			return nil, err
		}
		if !isDir {
			continue
		}
		sub, err := walk(tree, childPath, leaf)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}
