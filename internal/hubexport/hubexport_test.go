package hubexport_test

import (
	"context"
	"testing"

	"github.com/nexusbridge/hubstore/bl/ptrutils"
	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub/mockhub"
	"github.com/nexusbridge/hubstore/internal/hubexport"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repo = entities.Repo{User: "alice", Name: "proj"}

// Invariant 8: exactly |new.statuses \ old.statuses| + |new.prs \ old.prs| write calls.
func TestCallAPIEmitsExactlyTheDeltaCount(t *testing.T) {
	head := entities.Commit{Repo: repo, ID: "deadbeef"}
	oldStatus := entities.Status{Commit: head, Context: "ci/build", State: entities.StatusFailure}
	newStatus := entities.Status{Commit: head, Context: "ci/build", State: entities.StatusSuccess}
	unchangedPR := entities.PullRequest{Head: head, Number: 1, State: entities.Open, Title: "same"}
	changedPR := entities.PullRequest{Head: head, Number: 2, State: entities.Open, Title: "old title"}
	changedPRNew := changedPR
	changedPRNew.Title = "new title"

	old := snapshot.Empty().AddStatus(oldStatus).AddPR(unchangedPR).AddPR(changedPR)
	new := snapshot.Empty().AddStatus(newStatus).AddPR(unchangedPR).AddPR(changedPRNew)

	m := mockhub.New()
	require.NoError(t, hubexport.CallAPI(context.Background(), m, old, new, false))

	var setStatusCalls, setPRCalls int
	for _, c := range m.Calls() {
		switch c.Op {
		case "SetStatus":
			setStatusCalls++
		case "SetPR":
			setPRCalls++
		}
	}
	assert.Equal(t, 1, setStatusCalls)
	assert.Equal(t, 1, setPRCalls)
	assert.Equal(t, []entities.PullRequest{changedPRNew}, m.SetPRCalls())
}

// Scenario (d): a user status edit that wins the merge is exported on the next tick.
func TestCallAPIExportsUserWinningStatus(t *testing.T) {
	head := entities.Commit{Repo: repo, ID: "deadbeef"}
	old := snapshot.Empty().AddStatus(entities.Status{Commit: head, Context: "ci/build", State: entities.StatusSuccess})
	new := snapshot.Empty().AddStatus(entities.Status{Commit: head, Context: "ci/build", State: entities.StatusFailure, Description: ptrutils.Ptr("user override")})

	m := mockhub.New()
	require.NoError(t, hubexport.CallAPI(context.Background(), m, old, new, false))

	calls := m.SetStatusCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, entities.StatusFailure, calls[0].State)
}

// Scenario (f): dry-run computes deltas but issues zero Hub write calls.
func TestCallAPIDryRunMakesNoWriteCalls(t *testing.T) {
	head := entities.Commit{Repo: repo, ID: "deadbeef"}
	old := snapshot.Empty()
	new := snapshot.Empty().
		AddStatus(entities.Status{Commit: head, Context: "ci/build", State: entities.StatusSuccess}).
		AddPR(entities.PullRequest{Head: head, Number: 1, State: entities.Open, Title: "new"})

	m := mockhub.New()
	require.NoError(t, hubexport.CallAPI(context.Background(), m, old, new, true))

	for _, c := range m.Calls() {
		assert.NotEqual(t, "SetStatus", c.Op)
		assert.NotEqual(t, "SetPR", c.Op)
	}
}
