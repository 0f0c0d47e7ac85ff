package memstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nexusbridge/hubstore/internal/store"
)

// transaction is a single mutable working tree rooted at one parent
// commit (or no parent, for a branch's first transaction). The embedded
// *memTree supplies the read-only portion of store.Transaction; the
// methods below supply the mutating and lifecycle portion.
type transaction struct {
	*memTree
	branch       *memBranch
	parent       *memCommit
	mergeParents []string
	closed       bool
}

func (tx *transaction) checkOpen() {
	if tx.closed {
		panic("memstore: operation on a closed transaction")
	}
}

func (tx *transaction) Parents() []store.Commit {
	if tx.parent == nil {
		return nil
	}
	return []store.Commit{tx.parent}
}

func (tx *transaction) MakeDirs(path string) error {
	tx.checkOpen()
	tx.memTree.dirs[clean(path)] = struct{}{}
	return nil
}

func (tx *transaction) CreateOrReplaceFile(path, content string) error {
	tx.checkOpen()
	p := clean(path)
	tx.memTree.files[p] = content
	delete(tx.memTree.dirs, p)
	return nil
}

func (tx *transaction) Remove(path string) error {
	tx.checkOpen()
	p := clean(path)
	delete(tx.memTree.files, p)
	delete(tx.memTree.dirs, p)
	prefix := p + "/"
	for f := range tx.memTree.files {
		if strings.HasPrefix(f, prefix) {
			delete(tx.memTree.files, f)
		}
	}
	for d := range tx.memTree.dirs {
		if strings.HasPrefix(d, prefix) {
			delete(tx.memTree.dirs, d)
		}
	}
	return nil
}

// WorkingTree exposes the transaction's in-progress *memTree as a
// store.Tree. tx.memTree already implements store.Tree on its own; this
// just hands it out under the name the store.Transaction interface
// requires, since *transaction itself can't satisfy store.Tree (its
// Diff(Commit) shadows the embedded memTree.Diff(Tree)).
func (tx *transaction) WorkingTree() store.Tree {
	return tx.memTree
}

// Diff reports the changes that turn c's tree into the transaction's
// current working tree.
func (tx *transaction) Diff(c store.Commit) ([]store.PathChange, error) {
	mc, ok := c.(*memCommit)
	if !ok {
		return nil, fmt.Errorf("memstore: cannot diff against a foreign commit implementation")
	}
	return diffFiles(mc.tree.files, tx.memTree.files), nil
}

// Merge three-way merges c into the transaction's working tree using the
// transaction's sole parent as merge base, applying every change that
// only one side made and reporting the rest as conflicts. Conflicting
// paths are left untouched in the working tree (so it still holds
// "ours"); three exposes the full ours/theirs trees so the caller can
// inspect and resolve each conflicting path explicitly.
func (tx *transaction) Merge(c store.Commit) (store.ThreeWay, []string, error) {
	tx.checkOpen()
	mc, ok := c.(*memCommit)
	if !ok {
		return nil, nil, fmt.Errorf("memstore: cannot merge a foreign commit implementation")
	}

	base := newMemTree()
	if tx.parent != nil {
		base = tx.parent.tree
	}
	theirs := mc.tree
	ours := tx.memTree

	allPaths := map[string]struct{}{}
	for p := range base.files {
		allPaths[p] = struct{}{}
	}
	for p := range ours.files {
		allPaths[p] = struct{}{}
	}
	for p := range theirs.files {
		allPaths[p] = struct{}{}
	}

	var conflicts []string
	for p := range allPaths {
		b, hasB := base.files[p]
		o, hasO := ours.files[p]
		th, hasT := theirs.files[p]
		oursChanged := hasO != hasB || (hasO && hasB && o != b)
		theirsChanged := hasT != hasB || (hasT && hasB && th != b)

		switch {
		case !theirsChanged:
			// ours already holds the right value.
		case !oursChanged:
			if hasT {
				tx.memTree.files[p] = th
			} else {
				delete(tx.memTree.files, p)
			}
		default:
			if hasO == hasT && (!hasO || o == th) {
				continue // both sides converged on the same value independently
			}
			conflicts = append(conflicts, p)
		}
	}
	sort.Strings(conflicts)
	tx.mergeParents = append(tx.mergeParents, mc.id)

	return &threeWay{ours: ours.clone(), theirs: theirs.clone()}, conflicts, nil
}

func (tx *transaction) Commit(message string) (store.Commit, error) {
	tx.checkOpen()
	var parents []string
	if tx.parent != nil {
		parents = append(parents, tx.parent.id)
	}
	parents = append(parents, tx.mergeParents...)

	c := &memCommit{id: newCommitID(), parents: parents, tree: tx.memTree.clone(), message: message}
	tx.branch.store.putCommit(c)
	tx.branch.setHead(c)
	tx.closed = true
	return c, nil
}

func (tx *transaction) Abort() error {
	tx.checkOpen()
	tx.closed = true
	return nil
}

func (tx *transaction) Closed() bool {
	return tx.closed
}

type threeWay struct {
	ours   *memTree
	theirs *memTree
}

func (t *threeWay) Ours() store.Tree   { return t.ours }
func (t *threeWay) Theirs() store.Tree { return t.theirs }
