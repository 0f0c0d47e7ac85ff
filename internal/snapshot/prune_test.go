package snapshot_test

import (
	"testing"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/stretchr/testify/require"
)

func TestPruneDropsClosedPRsAndUnreachableCommitsAndStatuses(t *testing.T) {
	openPR := entities.PullRequest{Head: commit("open-head"), Number: 1, State: entities.Open}
	closedPR := entities.PullRequest{Head: commit("closed-head"), Number: 2, State: entities.Closed}

	s := snapshot.Empty().
		AddPR(openPR).
		AddPR(closedPR).
		AddStatus(entities.Status{Commit: openPR.Head, Context: "ci", State: entities.StatusSuccess}).
		AddStatus(entities.Status{Commit: closedPR.Head, Context: "ci", State: entities.StatusSuccess}).
		AddCommit(commit("orphan"))

	pruned, cleanup := snapshot.Prune(s)

	require.False(t, cleanup.Clean())
	require.ElementsMatch(t, []entities.PullRequest{closedPR}, cleanup.RemovedPRs())
	require.ElementsMatch(t, []entities.Commit{closedPR.Head, commit("orphan")}, cleanup.RemovedCommits())

	_, ok := pruned.PR(openPR.Key())
	require.True(t, ok)
	_, ok = pruned.PR(closedPR.Key())
	require.False(t, ok)

	require.True(t, pruned.HasCommit(openPR.Head))
	require.False(t, pruned.HasCommit(closedPR.Head))
	require.False(t, pruned.HasCommit(commit("orphan")))
}

func TestPruneKeepsOpenPRHeadWithoutStatus(t *testing.T) {
	openPR := entities.PullRequest{Head: commit("fresh-head"), Number: 3, State: entities.Open}
	s := snapshot.Empty().AddPR(openPR)

	pruned, cleanup := snapshot.Prune(s)

	require.True(t, cleanup.Clean())
	require.True(t, pruned.HasCommit(openPR.Head))
}

func TestPruneDropsRefOnlyHeadWithNoStatus(t *testing.T) {
	ref := entities.Ref{Head: commit("ref-head"), Name: "refs/heads/main"}
	s := snapshot.Empty().AddRef(ref).AddCommit(ref.Head)

	pruned, cleanup := snapshot.Prune(s)

	_, ok := pruned.Ref(ref.Key())
	require.True(t, ok)
	require.False(t, pruned.HasCommit(ref.Head))
	require.ElementsMatch(t, []entities.Commit{ref.Head}, cleanup.RemovedCommits())
}

func TestPruneKeepsStatusReachableOnlyThroughRef(t *testing.T) {
	ref := entities.Ref{Head: commit("ref-head"), Name: "refs/heads/main"}
	status := entities.Status{Commit: ref.Head, Context: "ci", State: entities.StatusSuccess}
	s := snapshot.Empty().AddRef(ref).AddStatus(status)

	pruned, cleanup := snapshot.Prune(s)

	require.True(t, cleanup.Clean())
	_, ok := pruned.Status(status.Key())
	require.True(t, ok)
	require.True(t, pruned.HasCommit(ref.Head))
}

func TestPruneIsNoopWhenNothingClosed(t *testing.T) {
	openPR := entities.PullRequest{Head: commit("a"), Number: 1, State: entities.Open}
	s := snapshot.Empty().AddPR(openPR).
		AddStatus(entities.Status{Commit: openPR.Head, Context: "ci", State: entities.StatusSuccess})

	pruned, cleanup := snapshot.Prune(s)

	require.True(t, cleanup.Clean())
	require.True(t, pruned.Equal(s))
}
