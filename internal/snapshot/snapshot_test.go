package snapshot_test

import (
	"testing"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/stretchr/testify/require"
)

var repo = entities.Repo{User: "acme", Name: "widget"}

func commit(id string) entities.Commit {
	return entities.Commit{Repo: repo, ID: id}
}

func TestAddPRAlsoAddsHeadAndRepo(t *testing.T) {
	pr := entities.PullRequest{Head: commit("deadbeef"), Number: 7, State: entities.Open}
	s := snapshot.Empty().AddPR(pr)

	require.True(t, s.HasRepo(repo))
	require.True(t, s.HasCommit(pr.Head))
	got, ok := s.PR(pr.Key())
	require.True(t, ok)
	require.Equal(t, pr, got)
}

func TestAddRefDoesNotAddCommit(t *testing.T) {
	ref := entities.Ref{Head: commit("cafef00d"), Name: "refs/heads/main"}
	s := snapshot.Empty().AddRef(ref)

	require.True(t, s.HasRepo(repo))
	require.False(t, s.HasCommit(ref.Head))
	got, ok := s.Ref(ref.Key())
	require.True(t, ok)
	require.Equal(t, ref, got)
}

func TestReplacePROverwritesByIdentity(t *testing.T) {
	pr := entities.PullRequest{Head: commit("a"), Number: 1, State: entities.Open, Title: "first"}
	s := snapshot.Empty().AddPR(pr)

	updated := pr
	updated.Title = "second"
	updated.State = entities.Closed
	s = s.ReplacePR(updated)

	got, ok := s.PR(pr.Key())
	require.True(t, ok)
	require.Equal(t, "second", got.Title)
	require.Equal(t, entities.Closed, got.State)
}

func TestRemoveCommitLeavesDependentsAlone(t *testing.T) {
	pr := entities.PullRequest{Head: commit("a"), Number: 1, State: entities.Open}
	s := snapshot.Empty().AddPR(pr)

	s = s.RemoveCommit(repo, "a")

	require.False(t, s.HasCommit(commit("a")))
	_, ok := s.PR(pr.Key())
	require.True(t, ok)
}

func TestUnionCombinesBothSides(t *testing.T) {
	a := snapshot.Empty().AddCommit(commit("a"))
	b := snapshot.Empty().AddCommit(commit("b"))

	u := snapshot.Union(a, b)
	require.True(t, u.HasCommit(commit("a")))
	require.True(t, u.HasCommit(commit("b")))
}

func TestEqualIgnoresInsertionOrder(t *testing.T) {
	a := snapshot.Empty().AddCommit(commit("a")).AddCommit(commit("b"))
	b := snapshot.Empty().AddCommit(commit("b")).AddCommit(commit("a"))

	require.True(t, a.Equal(b))
}

func TestMutatorsDoNotAliasReceiver(t *testing.T) {
	base := snapshot.Empty()
	withCommit := base.AddCommit(commit("a"))

	require.False(t, base.HasCommit(commit("a")))
	require.True(t, withCommit.HasCommit(commit("a")))
}
