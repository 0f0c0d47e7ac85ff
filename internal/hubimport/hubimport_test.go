package hubimport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub/mockhub"
	"github.com/nexusbridge/hubstore/internal/hubimport"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repo = entities.Repo{User: "alice", Name: "proj"}

func TestImportFoldsFetchedPRsRefsAndStatuses(t *testing.T) {
	m := mockhub.New()
	head := entities.Commit{Repo: repo, ID: "deadbeef"}
	pr := entities.PullRequest{Head: head, Number: 7, State: entities.Open, Title: "add x"}
	status := entities.Status{Commit: head, Context: "ci/build", State: entities.StatusSuccess}
	ref := entities.Ref{Head: head, Name: "refs/heads/main"}
	m.SetPRs(repo, []entities.PullRequest{pr})
	m.SetRefs(repo, []entities.Ref{ref})
	m.SetStatuses(head, []entities.Status{status})

	got := hubimport.Import(context.Background(), m, snapshot.Empty(), []entities.Repo{repo})

	assert.True(t, got.HasCommit(head))
	gotPR, ok := got.PR(pr.Key())
	require.True(t, ok)
	assert.Equal(t, pr, gotPR)
	gotStatus, ok := got.Status(status.Key())
	require.True(t, ok)
	assert.Equal(t, status, gotStatus)
	gotRef, ok := got.Ref(ref.Key())
	require.True(t, ok)
	assert.Equal(t, ref, gotRef)
}

// Invariant 7 / scenario (c): a PR open in the prior snapshot that the Hub
// no longer reports as open is synthesized as Closed.
func TestImportSynthesizesClosedPRFromAbsence(t *testing.T) {
	m := mockhub.New() // no PRs configured: Hub reports none open

	head := entities.Commit{Repo: repo, ID: "deadbeef"}
	openPR := entities.PullRequest{Head: head, Number: 7, State: entities.Open, Title: "add x"}
	old := snapshot.Empty().AddPR(openPR)

	got := hubimport.Import(context.Background(), m, old, []entities.Repo{repo})

	closed, ok := got.PR(openPR.Key())
	require.True(t, ok)
	assert.Equal(t, entities.Closed, closed.State)
}

func TestImportLeavesOutOfScopeOpenPRsUntouched(t *testing.T) {
	m := mockhub.New()
	other := entities.Repo{User: "bob", Name: "other"}
	otherHead := entities.Commit{Repo: other, ID: "c1"}
	otherPR := entities.PullRequest{Head: otherHead, Number: 1, State: entities.Open, Title: "unrelated"}
	old := snapshot.Empty().AddPR(otherPR)

	got := hubimport.Import(context.Background(), m, old, []entities.Repo{repo})

	stillOpen, ok := got.PR(otherPR.Key())
	require.True(t, ok)
	assert.Equal(t, entities.Open, stillOpen.State)
}

func TestImportDropsFailingRepoAndKeepsOthers(t *testing.T) {
	m := mockhub.New()
	good := entities.Repo{User: "alice", Name: "good"}
	bad := entities.Repo{User: "alice", Name: "bad"}
	head := entities.Commit{Repo: good, ID: "c1"}
	pr := entities.PullRequest{Head: head, Number: 1, State: entities.Open, Title: "ok"}
	m.SetPRs(good, []entities.PullRequest{pr})
	m.FailOn("PRs", bad.String(), errors.New("boom"))

	got := hubimport.Import(context.Background(), m, snapshot.Empty(), []entities.Repo{good, bad})

	_, ok := got.PR(pr.Key())
	assert.True(t, ok)
	assert.True(t, got.HasRepo(good))
	assert.False(t, got.HasRepo(bad))
}
