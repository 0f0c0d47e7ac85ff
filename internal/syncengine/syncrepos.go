package syncengine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nexusbridge/hubstore/internal/branchview"
	"github.com/nexusbridge/hubstore/internal/conversion"
	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub"
	"github.com/nexusbridge/hubstore/internal/hubimport"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
)

// SyncRepos is the central sync operation: import Hub state for repos
// onto priv, prune it, write it, commit priv if it changed, merge priv
// into pub, then prune pub. pubBranch and privBranch must already exist
// (see InitSync). The returned snapshotPair holds the final pub/priv
// snapshots with no transaction left open on either branch.
func SyncRepos(ctx context.Context, pubBranch, privBranch store.Branch, client hub.Client, repos []entities.Repo) (snapshotPair, error) {
	pub, err := branchview.Open(pubBranch, nil)
	if err != nil {
		return snapshotPair{}, err
	}
	priv, err := branchview.Open(privBranch, nil)
	if err != nil {
		_ = pub.Abort()
		return snapshotPair{}, err
	}
	state := &State{Pub: pub, Priv: priv}

	privS := hubimport.Import(ctx, client, priv.Snapshot, repos)
	prunedPrivS, cleanup := snapshot.Prune(privS)

	if !cleanup.Clean() {
		if err := applyCleanup(priv.Tx, cleanup); err != nil {
			_ = state.abortBoth()
			return snapshotPair{}, &StoreError{Err: fmt.Errorf("applying priv cleanup: %w", err)}
		}
	}

	if err := conversion.Write(priv.Tx, prunedPrivS); err != nil {
		_ = state.abortBoth()
		return snapshotPair{}, &ConversionError{Err: err}
	}

	privHead, err := commitOrAbortIfUnchanged(priv, cleanup.Clean(), reposSyncMessage(repos))
	if err != nil {
		_ = state.abortBoth()
		return snapshotPair{}, err
	}

	// Step 6: pub's pre-import transaction is no longer needed; abort and
	// re-open fresh so the merge starts from the current pub head. priv's
	// view is already closed (committed or aborted by
	// commitOrAbortIfUnchanged); State.abortBoth tolerates that, since
	// View.Abort is a no-op once Tx is already closed.
	if err := state.abortBoth(); err != nil {
		return snapshotPair{}, &StoreError{Err: err}
	}
	pub, err = branchview.Open(pubBranch, nil)
	if err != nil {
		return snapshotPair{}, err
	}
	// mergePrivIntoPub always leaves pub closed (committed or aborted)
	// before returning, on every path including error, so no further abort
	// is needed here.
	if err := mergePrivIntoPub(pub, privHead, prunedPrivS, privBranch.Name()); err != nil {
		return snapshotPair{}, err
	}

	finalPub, err := branchview.Open(pubBranch, nil)
	if err != nil {
		return snapshotPair{}, err
	}
	prunedPubS, pubCleanup := snapshot.Prune(finalPub.Snapshot)
	if !pubCleanup.Clean() {
		if err := applyCleanup(finalPub.Tx, pubCleanup); err != nil {
			_ = finalPub.Abort()
			return snapshotPair{}, &StoreError{Err: fmt.Errorf("applying pub cleanup: %w", err)}
		}
		if _, err := finalPub.Commit("Prune"); err != nil {
			return snapshotPair{}, &StoreError{Err: err}
		}
	} else if err := finalPub.Abort(); err != nil {
		return snapshotPair{}, &StoreError{Err: err}
	}

	finalPriv, err := branchview.Open(privBranch, nil)
	if err != nil {
		return snapshotPair{}, err
	}
	if err := finalPriv.Abort(); err != nil {
		return snapshotPair{}, &StoreError{Err: err}
	}

	return snapshotPair{Pub: prunedPubS, Priv: finalPriv.Snapshot}, nil
}

// commitOrAbortIfUnchanged commits priv with message unless cleanupClean
// is true and priv's working tree has no diff against its current head,
// in which case the transaction is aborted instead and priv's existing
// head is returned unchanged.
func commitOrAbortIfUnchanged(priv *branchview.View, cleanupClean bool, message string) (store.Commit, error) {
	var diff []store.PathChange
	var err error
	if priv.HasHead {
		diff, err = priv.Tx.Diff(priv.Head)
		if err != nil {
			_ = priv.Abort()
			return nil, &StoreError{Err: err}
		}
	}

	if cleanupClean && len(diff) == 0 && priv.HasHead {
		if err := priv.Abort(); err != nil {
			return nil, &StoreError{Err: err}
		}
		return priv.Head, nil
	}

	c, err := priv.Commit(message)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	return c, nil
}

// applyCleanup removes the PR and commit subtrees snapshot.Prune marked
// as dropped, mirroring the tree layout conversion.UpdatePR/Write use.
func applyCleanup(tx store.Transaction, cleanup snapshot.Cleanup) error {
	for _, pr := range cleanup.RemovedPRs() {
		path := fmt.Sprintf("%s/pr/%d", repoPathFor(pr.Head.Repo), pr.Number)
		if err := tx.Remove(path); err != nil {
			return err
		}
	}
	for _, c := range cleanup.RemovedCommits() {
		path := fmt.Sprintf("%s/commit/%s", repoPathFor(c.Repo), c.ID)
		if err := tx.Remove(path); err != nil {
			return err
		}
	}
	return nil
}

func repoPathFor(repo entities.Repo) string { return repo.User + "/" + repo.Name }

func reposSyncMessage(repos []entities.Repo) string {
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.String())
	}
	sort.Strings(names)
	return fmt.Sprintf("Sync with %s", strings.Join(names, ", "))
}
