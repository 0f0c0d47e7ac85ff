// Package githubclient implements hub.Client against the real GitHub
// REST API via google/go-github.
package githubclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v69/github"
	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type client struct {
	gh *gogithub.Client
}

var _ hub.Client = (*client)(nil)

// New returns a hub.Client authenticated with token, via
// golang.org/x/oauth2's static-token client.
func New(ctx context.Context, token string) *client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, src)
	return &client{gh: gogithub.NewClient(httpClient)}
}

// NewWithHTTPClient wires a pre-built *http.Client, for tests that need
// to point at an httptest.Server instead of api.github.com.
func NewWithHTTPClient(hc *http.Client) *client {
	return &client{gh: gogithub.NewClient(hc)}
}

func (c *client) UserExists(ctx context.Context, user string) (bool, error) {
	_, resp, err := c.gh.Users.Get(ctx, user)
	return existsFromResponse(resp, err)
}

func (c *client) RepoExists(ctx context.Context, repo entities.Repo) (bool, error) {
	_, resp, err := c.gh.Repositories.Get(ctx, repo.User, repo.Name)
	return existsFromResponse(resp, err)
}

func existsFromResponse(resp *gogithub.Response, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

func (c *client) Repos(ctx context.Context, user string) ([]entities.Repo, error) {
	opts := &gogithub.RepositoryListByUserOptions{ListOptions: gogithub.ListOptions{PerPage: 100}}
	var out []entities.Repo
	for {
		repos, resp, err := c.gh.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("githubclient: listing repos for %s: %w", user, err)
		}
		for _, r := range repos {
			out = append(out, entities.Repo{User: user, Name: r.GetName()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *client) Status(ctx context.Context, commit entities.Commit) ([]entities.Status, error) {
	opts := &gogithub.ListOptions{PerPage: 100}
	var out []entities.Status
	for {
		statuses, resp, err := c.gh.Repositories.ListStatuses(ctx, commit.Repo.User, commit.Repo.Name, commit.ID, opts)
		if err != nil {
			return nil, fmt.Errorf("githubclient: listing statuses for %s: %w", commit, err)
		}
		for _, st := range statuses {
			state, err := entities.ParseStatusState(st.GetState())
			if err != nil {
				return nil, fmt.Errorf("githubclient: %s: %w", commit, err)
			}
			out = append(out, entities.Status{
				Commit:      commit,
				Context:     canonicalContext(st.GetContext()),
				URL:         optionalString(st.TargetURL),
				Description: optionalString(st.Description),
				State:       state,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// canonicalContext maps GitHub's "/"-joined status context directly onto
// our canonical path representation, treating the well-known
// "default"/empty context the same way entities.Status does.
func canonicalContext(ghContext string) string {
	if ghContext == "" || ghContext == entities.DefaultContext {
		return ""
	}
	return ghContext
}

func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (c *client) SetStatus(ctx context.Context, status entities.Status) error {
	ghContext := status.DisplayContext()
	input := &gogithub.RepoStatus{
		State:       gogithub.Ptr(status.State.String()),
		Context:     gogithub.Ptr(ghContext),
		TargetURL:   status.URL,
		Description: status.Description,
	}
	_, _, err := c.gh.Repositories.CreateStatus(ctx, status.Commit.Repo.User, status.Commit.Repo.Name, status.Commit.ID, input)
	if err != nil {
		return fmt.Errorf("githubclient: setting status for %s: %w", status.Commit, err)
	}
	return nil
}

func (c *client) SetPR(ctx context.Context, pr entities.PullRequest) error {
	update := &gogithub.PullRequest{
		Title: gogithub.Ptr(pr.Title),
		State: gogithub.Ptr(pr.State.String()),
	}
	_, _, err := c.gh.PullRequests.Edit(ctx, pr.Head.Repo.User, pr.Head.Repo.Name, pr.Number, update)
	if err != nil {
		return fmt.Errorf("githubclient: setting pr #%d on %s: %w", pr.Number, pr.Head.Repo, err)
	}
	return nil
}

func (c *client) PRs(ctx context.Context, repo entities.Repo) ([]entities.PullRequest, error) {
	opts := &gogithub.PullRequestListOptions{State: "open", ListOptions: gogithub.ListOptions{PerPage: 100}}
	var out []entities.PullRequest
	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, repo.User, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("githubclient: listing prs for %s: %w", repo, err)
		}
		for _, pr := range prs {
			out = append(out, entities.PullRequest{
				Head:   entities.Commit{Repo: repo, ID: pr.GetHead().GetSHA()},
				Number: pr.GetNumber(),
				State:  entities.Open,
				Title:  pr.GetTitle(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *client) Refs(ctx context.Context, repo entities.Repo) ([]entities.Ref, error) {
	refs, _, err := c.gh.Git.ListMatchingRefs(ctx, repo.User, repo.Name, &gogithub.ReferenceListOptions{
		ListOptions: gogithub.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("githubclient: listing refs for %s: %w", repo, err)
	}
	out := make([]entities.Ref, 0, len(refs))
	for _, r := range refs {
		name := strings.TrimPrefix(r.GetRef(), "refs/")
		out = append(out, entities.Ref{
			Head: entities.Commit{Repo: repo, ID: r.GetObject().GetSHA()},
			Name: "refs/" + name,
		})
	}
	return out, nil
}

func (c *client) Events(ctx context.Context, repo entities.Repo) ([]entities.Event, error) {
	events, _, err := c.gh.Activity.ListRepositoryEvents(ctx, repo.User, repo.Name, &gogithub.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("githubclient: listing events for %s: %w", repo, err)
	}
	out := make([]entities.Event, 0, len(events))
	for _, e := range events {
		out = append(out, entities.Event{Kind: entities.EventOther, Repo: repo, Other: e.GetType()})
	}
	log.Debug().Str("component", "githubclient").Str("repo", repo.String()).Int("events", len(out)).Msg("fetched events")
	return out, nil
}
