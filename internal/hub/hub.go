// Package hub defines the contract the sync engine uses to talk to a
// GitHub-like remote: pull requests, refs, commit statuses and events.
// internal/hub/githubclient implements it against the real GitHub REST
// API; internal/hub/mockhub is the keyed, call-recording test double
// engine tests run against.
package hub

import (
	"context"

	"github.com/nexusbridge/hubstore/internal/entities"
)

// Client is the Hub operation set the engine consumes. Every method
// takes a context.Context for cancellation and returns (value, error),
// idiomatic Go error handling in place of a bespoke result/cancellation
// type. Implementations should treat
// network/authorization failures as ordinary errors: the caller (see
// internal/hubimport and internal/hubexport) is responsible for logging
// and dropping them per call rather than aborting a sync tick.
type Client interface {
	UserExists(ctx context.Context, user string) (bool, error)
	RepoExists(ctx context.Context, repo entities.Repo) (bool, error)
	Repos(ctx context.Context, user string) ([]entities.Repo, error)
	Status(ctx context.Context, commit entities.Commit) ([]entities.Status, error)
	SetStatus(ctx context.Context, status entities.Status) error
	SetPR(ctx context.Context, pr entities.PullRequest) error
	PRs(ctx context.Context, repo entities.Repo) ([]entities.PullRequest, error)
	Refs(ctx context.Context, repo entities.Repo) ([]entities.Ref, error)
	Events(ctx context.Context, repo entities.Repo) ([]entities.Event, error)
}
