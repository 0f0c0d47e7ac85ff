// Package branchview pairs one Store branch with the open transaction and
// derived snapshot a single sync tick works through. Each View owns
// exactly one transaction, which callers must close with Commit or Abort
// before the view is dropped.
package branchview

import (
	"fmt"

	"github.com/nexusbridge/hubstore/internal/conversion"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
)

// Previous is the cached (head commit, snapshot) pair from a prior View
// over the same branch, letting Open diff-apply instead of rebuilding.
type Previous struct {
	Commit   store.Commit
	Snapshot snapshot.Snapshot
}

// View is one (branch, open transaction, head commit, snapshot) tuple.
type View struct {
	Branch     store.Branch
	Tx         store.Transaction
	Head       store.Commit
	HasHead    bool
	Snapshot   snapshot.Snapshot
}

// Open starts a transaction on branch and resolves its derived snapshot.
// old, if non-nil, must come from a previous View over the same branch;
// BuildSnapshot then diff-applies instead of rebuilding. A transaction
// with no parent (a branch that has never been committed to) is not an
// error: the view gets an empty snapshot and HasHead is false. A
// transaction with more than one parent is aborted and an error returned.
func Open(branch store.Branch, old *Previous) (*View, error) {
	tx, err := branch.Transaction()
	if err != nil {
		return nil, fmt.Errorf("branchview: opening transaction on %s: %w", branch.Name(), err)
	}

	parents := tx.Parents()
	view := &View{Branch: branch, Tx: tx}

	switch len(parents) {
	case 0:
		view.Snapshot = snapshot.Empty()
	case 1:
		view.Head = parents[0]
		view.HasHead = true
		var prev *conversion.Previous
		if old != nil {
			prev = &conversion.Previous{Commit: old.Commit, Snapshot: old.Snapshot}
		}
		s, err := conversion.BuildSnapshot(tx.WorkingTree(), prev)
		if err != nil {
			_ = tx.Abort()
			return nil, fmt.Errorf("branchview: building snapshot for %s: %w", branch.Name(), err)
		}
		view.Snapshot = s
	default:
		_ = tx.Abort()
		return nil, fmt.Errorf("branchview: %s: transaction has %d parents, want 0 or 1", branch.Name(), len(parents))
	}

	return view, nil
}

// Commit commits the view's transaction with message, closing it.
func (v *View) Commit(message string) (store.Commit, error) {
	c, err := v.Tx.Commit(message)
	if err != nil {
		return nil, fmt.Errorf("branchview: committing %s: %w", v.Branch.Name(), err)
	}
	return c, nil
}

// Abort aborts the view's transaction, closing it.
func (v *View) Abort() error {
	if v.Tx.Closed() {
		return nil
	}
	if err := v.Tx.Abort(); err != nil {
		return fmt.Errorf("branchview: aborting %s: %w", v.Branch.Name(), err)
	}
	return nil
}
