package branchview_test

import (
	"testing"

	"github.com/nexusbridge/hubstore/internal/branchview"
	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repo = entities.Repo{User: "alice", Name: "proj"}

func TestOpenOnFreshBranchHasEmptySnapshotAndNoHead(t *testing.T) {
	s := memstore.New()
	b := s.Branch("priv")

	v, err := branchview.Open(b, nil)
	require.NoError(t, err)
	assert.False(t, v.HasHead)
	assert.Empty(t, v.Snapshot.Repos())
	require.NoError(t, v.Abort())
}

func TestOpenRebuildsSnapshotFromExistingHead(t *testing.T) {
	s := memstore.New()
	b := s.Branch("priv")

	v, err := branchview.Open(b, nil)
	require.NoError(t, err)
	require.NoError(t, v.Tx.MakeDirs("alice/proj/pr/7"))
	require.NoError(t, v.Tx.CreateOrReplaceFile("alice/proj/pr/7/head", "deadbeef\n"))
	require.NoError(t, v.Tx.CreateOrReplaceFile("alice/proj/pr/7/state", "open\n"))
	_, err = v.Commit("seed")
	require.NoError(t, err)

	v2, err := branchview.Open(b, nil)
	require.NoError(t, err)
	assert.True(t, v2.HasHead)
	pr, ok := v2.Snapshot.PR(entities.PRKey{Repo: repo, Number: 7})
	require.True(t, ok)
	assert.Equal(t, 7, pr.Number)
	require.NoError(t, v2.Abort())
}

func TestOpenDiffAppliesIncrementallyAgainstPrevious(t *testing.T) {
	s := memstore.New()
	b := s.Branch("priv")

	v, err := branchview.Open(b, nil)
	require.NoError(t, err)
	require.NoError(t, v.Tx.MakeDirs("alice/proj/pr/7"))
	require.NoError(t, v.Tx.CreateOrReplaceFile("alice/proj/pr/7/head", "deadbeef\n"))
	require.NoError(t, v.Tx.CreateOrReplaceFile("alice/proj/pr/7/state", "open\n"))
	head1, err := v.Commit("seed")
	require.NoError(t, err)

	full, err := branchview.Open(b, nil)
	require.NoError(t, err)
	require.NoError(t, full.Abort())

	prev := &branchview.Previous{Commit: head1, Snapshot: full.Snapshot}

	v2, err := branchview.Open(b, nil)
	require.NoError(t, err)
	require.NoError(t, v2.Tx.CreateOrReplaceFile("alice/proj/pr/7/state", "closed\n"))
	_, err = v2.Commit("close pr")
	require.NoError(t, err)

	incremental, err := branchview.Open(b, prev)
	require.NoError(t, err)
	require.NoError(t, incremental.Abort())
}
