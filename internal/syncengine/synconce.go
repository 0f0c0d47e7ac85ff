package syncengine

import (
	"context"

	"github.com/nexusbridge/hubstore/internal/branchview"
	"github.com/nexusbridge/hubstore/internal/concurrent"
	"github.com/nexusbridge/hubstore/internal/hub"
	"github.com/nexusbridge/hubstore/internal/hubexport"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
)

// SyncOnce runs one steady-state tick given the snapshot pair left by the
// previous tick: push pub's user edits first, then re-import/merge/prune
// the repos that changed on either branch since last time.
func SyncOnce(ctx context.Context, pubBranch, privBranch store.Branch, client hub.Client, dry bool, old snapshotPair) (snapshotPair, error) {
	// Reading pub's and priv's current snapshot is the one place a tick
	// needs the strict, first-error-aborts fan-out: there's no tolerable
	// partial outcome (unlike hubimport's per-repo Hub reads), and the two
	// reads are independent enough to run concurrently.
	current, err := concurrent.Map([]store.Branch{pubBranch, privBranch}, currentSnapshot)
	if err != nil {
		return snapshotPair{}, err
	}
	currentPub, currentPriv := current[0], current[1]

	if err := hubexport.CallAPI(ctx, client, old.Pub, currentPub, dry); err != nil {
		return snapshotPair{}, err
	}

	repos := repoUnion(
		repoSymmetricDifference(old.Pub.Repos(), currentPub.Repos()),
		repoSymmetricDifference(old.Priv.Repos(), currentPriv.Repos()),
	)
	if len(repos) == 0 {
		return snapshotPair{Pub: currentPub, Priv: currentPriv}, nil
	}

	return SyncRepos(ctx, pubBranch, privBranch, client, repos)
}

// currentSnapshot opens a throwaway view on branch just to read its
// current snapshot, then closes it immediately.
func currentSnapshot(branch store.Branch) (snapshot.Snapshot, error) {
	v, err := branchview.Open(branch, nil)
	if err != nil {
		return snapshot.Empty(), err
	}
	if err := v.Abort(); err != nil {
		return snapshot.Empty(), &StoreError{Err: err}
	}
	return v.Snapshot, nil
}
