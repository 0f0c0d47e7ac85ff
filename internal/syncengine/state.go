package syncengine

import (
	"github.com/nexusbridge/hubstore/internal/branchview"
	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/snapshot"
)

// State is the (public, private) pair of branch views a sync tick works
// through. Pub is user-facing; Priv is where imported Hub state lands
// before being merged into Pub.
type State struct {
	Pub  *branchview.View
	Priv *branchview.View
}

// abortBoth aborts both views unconditionally, so a failure aborting one
// never leaks the other's open transaction, and returns Pub's error if it
// failed, else Priv's. Both View.Abort methods are no-ops on an
// already-closed transaction, so calling abortBoth on a State where one
// side was already committed or aborted elsewhere is safe.
func (s *State) abortBoth() error {
	errPub := s.Pub.Abort()
	errPriv := s.Priv.Abort()
	if errPub != nil {
		return errPub
	}
	return errPriv
}

// repoUnion returns the union of a and b's repos, deduplicated.
func repoUnion(a, b []entities.Repo) []entities.Repo {
	seen := map[entities.Repo]struct{}{}
	var out []entities.Repo
	for _, r := range append(append([]entities.Repo{}, a...), b...) {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// repoSymmetricDifference returns the repos present in exactly one of
// oldRepos and newRepos.
func repoSymmetricDifference(oldRepos, newRepos []entities.Repo) []entities.Repo {
	oldSet := map[entities.Repo]struct{}{}
	for _, r := range oldRepos {
		oldSet[r] = struct{}{}
	}
	newSet := map[entities.Repo]struct{}{}
	for _, r := range newRepos {
		newSet[r] = struct{}{}
	}
	var out []entities.Repo
	for r := range oldSet {
		if _, ok := newSet[r]; !ok {
			out = append(out, r)
		}
	}
	for r := range newSet {
		if _, ok := oldSet[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// snapshotPair is a lightweight (pub, priv) snapshot pair retained across
// ticks to compute the next tick's repo scope and export delta, without
// keeping either branch's transaction open between ticks.
type snapshotPair struct {
	Pub  snapshot.Snapshot
	Priv snapshot.Snapshot
}
