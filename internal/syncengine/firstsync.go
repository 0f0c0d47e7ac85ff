package syncengine

import (
	"context"

	"github.com/nexusbridge/hubstore/internal/branchview"
	"github.com/nexusbridge/hubstore/internal/hub"
	"github.com/nexusbridge/hubstore/internal/hubexport"
	"github.com/nexusbridge/hubstore/internal/store"
)

// FirstSync runs the engine's very first tick: a full rebuild of both
// branches, a union of their repos, and — unless that union is empty — a
// SyncRepos pass followed by exporting the resulting delta (computed
// between priv's and pub's post-sync snapshots, matching the Hub-import
// fold order rather than pub's pre-tick state). Returns the snapshot
// pair to seed subsequent SyncOnce calls with.
func FirstSync(ctx context.Context, pubBranch, privBranch store.Branch, client hub.Client, dry bool) (snapshotPair, error) {
	pub, err := branchview.Open(pubBranch, nil)
	if err != nil {
		return snapshotPair{}, err
	}
	priv, err := branchview.Open(privBranch, nil)
	if err != nil {
		_ = pub.Abort()
		return snapshotPair{}, err
	}

	repos := repoUnion(pub.Snapshot.Repos(), priv.Snapshot.Repos())
	if len(repos) == 0 {
		if err := pub.Abort(); err != nil {
			return snapshotPair{}, &StoreError{Err: err}
		}
		if err := priv.Abort(); err != nil {
			return snapshotPair{}, &StoreError{Err: err}
		}
		return snapshotPair{Pub: pub.Snapshot, Priv: priv.Snapshot}, nil
	}

	if err := pub.Abort(); err != nil {
		return snapshotPair{}, &StoreError{Err: err}
	}
	if err := priv.Abort(); err != nil {
		return snapshotPair{}, &StoreError{Err: err}
	}

	result, err := SyncRepos(ctx, pubBranch, privBranch, client, repos)
	if err != nil {
		return snapshotPair{}, err
	}

	if err := hubexport.CallAPI(ctx, client, result.Priv, result.Pub, dry); err != nil {
		return result, err
	}
	return result, nil
}
