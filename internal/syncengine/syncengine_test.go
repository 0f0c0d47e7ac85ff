package syncengine_test

import (
	"context"
	"testing"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub/mockhub"
	"github.com/nexusbridge/hubstore/internal/store/memstore"
	"github.com/nexusbridge/hubstore/internal/syncengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repo = entities.Repo{User: "alice", Name: "proj"}

// Scenario (a): empty start. init_sync seeds priv with a README and
// fast-forwards pub to it; first_sync then sees repos=∅ and returns with
// both branches sharing the same head.
func TestEmptyStartInitializesAndNoopsFirstSync(t *testing.T) {
	s := memstore.New()
	pub := s.Branch("pub")
	priv := s.Branch("priv")

	require.NoError(t, syncengine.InitSync(pub, priv))

	pubHead, ok, err := pub.Head()
	require.NoError(t, err)
	require.True(t, ok)
	privHead, ok, err := priv.Head()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, privHead.ID(), pubHead.ID())

	client := mockhub.New()
	_, err = syncengine.FirstSync(context.Background(), pub, priv, client, false)
	require.NoError(t, err)

	pubHead2, _, _ := pub.Head()
	privHead2, _, _ := priv.Head()
	assert.Equal(t, pubHead.ID(), pubHead2.ID())
	assert.Equal(t, privHead.ID(), privHead2.ID())
}

// Scenario (b): new open PR with a status. After first_sync, priv's
// resulting snapshot holds the PR and its status, keyed to its head
// commit, and pub ends up with the same commit reachable.
func TestFirstSyncImportsOpenPRAndStatus(t *testing.T) {
	s := memstore.New()
	pub := s.Branch("pub")
	priv := s.Branch("priv")
	require.NoError(t, syncengine.InitSync(pub, priv))

	// Subscribe alice/proj by committing a bare marker directory on pub,
	// the same way a manually-added tree path registers a repo.
	tx, err := pub.Transaction()
	require.NoError(t, err)
	require.NoError(t, tx.MakeDirs("alice/proj/.subscribed"))
	_, err = tx.Commit("subscribe alice/proj")
	require.NoError(t, err)

	client := mockhub.New()
	head := entities.Commit{Repo: repo, ID: "deadbeef"}
	client.SetPRs(repo, []entities.PullRequest{{Head: head, Number: 7, State: entities.Open, Title: "add x"}})
	client.SetStatuses(head, []entities.Status{{Commit: head, Context: "ci/build", State: entities.StatusSuccess}})

	result, err := syncengine.FirstSync(context.Background(), pub, priv, client, false)
	require.NoError(t, err)
	assert.True(t, result.Priv.HasCommit(head))
	pr, ok := result.Priv.PR(entities.PRKey{Repo: repo, Number: 7})
	require.True(t, ok)
	assert.Equal(t, "add x", pr.Title)
	_, ok = result.Pub.PR(entities.PRKey{Repo: repo, Number: 7})
	assert.True(t, ok)
}
