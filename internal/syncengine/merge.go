package syncengine

import (
	"fmt"
	"strings"

	"github.com/nexusbridge/hubstore/internal/branchview"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
)

// mergePrivIntoPub merges privHead into pub's transaction: user mutations
// (ours) win over imported state (theirs) at every conflicting path, and
// a path both sides deleted drops its directory entirely. pub is aborted
// if the two snapshots already compare equal, or if the resolved working
// tree ends up with no diff against pub's prior head; otherwise it is
// committed with a message naming privBranchName, a diff summary and any
// conflicts. Either way pub is left closed.
func mergePrivIntoPub(pub *branchview.View, privHead store.Commit, privSnapshot snapshot.Snapshot, privBranchName string) error {
	if pub.Snapshot.Equal(privSnapshot) {
		return pub.Abort()
	}

	three, conflicts, err := pub.Tx.Merge(privHead)
	if err != nil {
		_ = pub.Abort()
		return &StoreError{Err: fmt.Errorf("merging %s into %s: %w", privBranchName, pub.Branch.Name(), err)}
	}

	for _, path := range conflicts {
		if err := resolveConflict(pub.Tx, three, path); err != nil {
			_ = pub.Abort()
			return &StoreError{Err: fmt.Errorf("resolving conflict at %q: %w", path, err)}
		}
	}

	var diff []store.PathChange
	if pub.HasHead {
		diff, err = pub.Tx.Diff(pub.Head)
		if err != nil {
			_ = pub.Abort()
			return &StoreError{Err: fmt.Errorf("diffing %s after merge: %w", pub.Branch.Name(), err)}
		}
	}

	if len(diff) == 0 {
		return pub.Abort()
	}

	msg := mergeCommitMessage(privBranchName, diff, conflicts)
	_, err = pub.Commit(msg)
	return err
}

// resolveConflict applies ours-wins-over-theirs at path: if both sides
// are missing the file, its directory is dropped; otherwise ours' content
// is written when present, else theirs'.
func resolveConflict(tx store.Transaction, three store.ThreeWay, path string) error {
	oursVal, oursOK, err := readOptionalFile(three.Ours(), path)
	if err != nil {
		return err
	}
	theirsVal, theirsOK, err := readOptionalFile(three.Theirs(), path)
	if err != nil {
		return err
	}

	if !oursOK && !theirsOK {
		dir, _ := splitDirFile(path)
		return tx.Remove(dir)
	}

	val := theirsVal
	if oursOK {
		val = oursVal
	}
	return tx.CreateOrReplaceFile(path, val)
}

func readOptionalFile(tree store.Tree, path string) (string, bool, error) {
	ok, err := tree.ExistsFile(path)
	if err != nil || !ok {
		return "", false, err
	}
	content, err := tree.ReadFile(path)
	return content, true, err
}

func splitDirFile(path string) (dir, file string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

func mergeCommitMessage(privBranchName string, diff []store.PathChange, conflicts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merge %s\n\n", privBranchName)
	for _, d := range diff {
		fmt.Fprintf(&b, "%s %s\n", d.Type, d.Path)
	}
	if len(conflicts) > 0 {
		b.WriteString("\nconflicts:\n")
		for _, c := range conflicts {
			fmt.Fprintf(&b, "  %s\n", c)
		}
	}
	return b.String()
}
