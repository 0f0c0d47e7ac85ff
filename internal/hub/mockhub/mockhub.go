// Package mockhub is an in-memory hub.Client double. Hub calls fan out
// concurrently (see internal/concurrent), so rather than replay an
// ordered queue of expected calls, this double is keyed by (operation,
// repo-or-commit): every call is recorded into a log for assertions, and
// canned responses or injected failures are looked up by key rather
// than matched in sequence.
package mockhub

import (
	"context"
	"fmt"
	"sync"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub"
)

// Call records one invocation against the double, for test assertions.
type Call struct {
	Op  string
	Key string
}

// Client is a hub.Client test double configured with canned responses
// and, optionally, per-call injected failures.
type Client struct {
	mu sync.Mutex

	users      map[string]bool
	repoExists map[entities.Repo]bool
	repos      map[string][]entities.Repo
	prs        map[entities.Repo][]entities.PullRequest
	refs       map[entities.Repo][]entities.Ref
	statuses   map[entities.Commit][]entities.Status
	events     map[entities.Repo][]entities.Event

	fail  map[Call]error
	calls []Call

	setStatusCalls []entities.Status
	setPRCalls     []entities.PullRequest
}

var _ hub.Client = (*Client)(nil)

// New returns an empty mock Hub client.
func New() *Client {
	return &Client{
		users:      map[string]bool{},
		repoExists: map[entities.Repo]bool{},
		repos:      map[string][]entities.Repo{},
		prs:        map[entities.Repo][]entities.PullRequest{},
		refs:       map[entities.Repo][]entities.Ref{},
		statuses:   map[entities.Commit][]entities.Status{},
		events:     map[entities.Repo][]entities.Event{},
		fail:       map[Call]error{},
	}
}

func (c *Client) SetUser(user string, exists bool)                      { c.users[user] = exists }
func (c *Client) SetRepoExists(repo entities.Repo, exists bool)         { c.repoExists[repo] = exists }
func (c *Client) SetRepos(user string, repos []entities.Repo)           { c.repos[user] = repos }
func (c *Client) SetPRs(repo entities.Repo, prs []entities.PullRequest) { c.prs[repo] = prs }
func (c *Client) SetRefs(repo entities.Repo, refs []entities.Ref)       { c.refs[repo] = refs }
func (c *Client) SetStatuses(commit entities.Commit, statuses []entities.Status) {
	c.statuses[commit] = statuses
}
func (c *Client) SetEvents(repo entities.Repo, events []entities.Event) { c.events[repo] = events }

// FailOn makes every matching call return err instead of its canned
// response, simulating a per-call Hub failure.
func (c *Client) FailOn(op, key string, err error) {
	c.fail[Call{Op: op, Key: key}] = err
}

// Calls returns every call recorded so far, in the order observed.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// SetPRCalls returns every PR passed to SetPR, in call order.
func (c *Client) SetPRCalls() []entities.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.PullRequest, len(c.setPRCalls))
	copy(out, c.setPRCalls)
	return out
}

// SetStatusCalls returns every status passed to SetStatus, in call order.
func (c *Client) SetStatusCalls() []entities.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.Status, len(c.setStatusCalls))
	copy(out, c.setStatusCalls)
	return out
}

func (c *Client) record(op, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	call := Call{Op: op, Key: key}
	c.calls = append(c.calls, call)
	return c.fail[call]
}

func (c *Client) UserExists(_ context.Context, user string) (bool, error) {
	if err := c.record("UserExists", user); err != nil {
		return false, err
	}
	return c.users[user], nil
}

func (c *Client) RepoExists(_ context.Context, repo entities.Repo) (bool, error) {
	if err := c.record("RepoExists", repo.String()); err != nil {
		return false, err
	}
	return c.repoExists[repo], nil
}

func (c *Client) Repos(_ context.Context, user string) ([]entities.Repo, error) {
	if err := c.record("Repos", user); err != nil {
		return nil, err
	}
	return c.repos[user], nil
}

func (c *Client) Status(_ context.Context, commit entities.Commit) ([]entities.Status, error) {
	if err := c.record("Status", commit.String()); err != nil {
		return nil, err
	}
	return c.statuses[commit], nil
}

func (c *Client) SetStatus(_ context.Context, status entities.Status) error {
	if err := c.record("SetStatus", fmt.Sprintf("%s/%s", status.Commit, status.DisplayContext())); err != nil {
		return err
	}
	c.mu.Lock()
	c.setStatusCalls = append(c.setStatusCalls, status)
	c.mu.Unlock()
	return nil
}

func (c *Client) SetPR(_ context.Context, pr entities.PullRequest) error {
	if err := c.record("SetPR", fmt.Sprintf("%s#%d", pr.Head.Repo, pr.Number)); err != nil {
		return err
	}
	c.mu.Lock()
	c.setPRCalls = append(c.setPRCalls, pr)
	c.mu.Unlock()
	return nil
}

func (c *Client) PRs(_ context.Context, repo entities.Repo) ([]entities.PullRequest, error) {
	if err := c.record("PRs", repo.String()); err != nil {
		return nil, err
	}
	return c.prs[repo], nil
}

func (c *Client) Refs(_ context.Context, repo entities.Repo) ([]entities.Ref, error) {
	if err := c.record("Refs", repo.String()); err != nil {
		return nil, err
	}
	return c.refs[repo], nil
}

func (c *Client) Events(_ context.Context, repo entities.Repo) ([]entities.Event, error) {
	if err := c.record("Events", repo.String()); err != nil {
		return nil, err
	}
	return c.events[repo], nil
}
