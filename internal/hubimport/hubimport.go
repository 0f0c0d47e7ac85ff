// Package hubimport fetches open PRs, refs and statuses for a set of
// repos from the Hub and folds them into a snapshot, synthesizing
// Closed transitions for PRs the Hub no longer reports as open.
package hubimport

import (
	"context"

	"github.com/nexusbridge/hubstore/internal/concurrent"
	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub"
	"github.com/nexusbridge/hubstore/internal/maputils"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/rs/zerolog/log"
)

// Import fetches open PRs, refs and per-commit statuses for every repo in
// repos, folding the result on top of old. A PR that was Open in old,
// belongs to one of repos, and is no longer reported open by the Hub is
// synthesized as Closed (the Hub only ever reports open PRs; closure is
// inferred by absence). Per-repo and per-commit Hub failures are logged
// and dropped rather than aborting the import.
func Import(ctx context.Context, client hub.Client, old snapshot.Snapshot, repos []entities.Repo) snapshot.Snapshot {
	prItems := concurrent.MapTolerant(repos, func(r entities.Repo) ([]entities.PullRequest, error) {
		return client.PRs(ctx, r)
	})
	refItems := concurrent.MapTolerant(repos, func(r entities.Repo) ([]entities.Ref, error) {
		return client.Refs(ctx, r)
	})

	var fetchedPRs []entities.PullRequest
	for i, item := range prItems {
		if item.Err != nil {
			log.Error().Str("component", "hubimport").Str("repo", repos[i].String()).Err(item.Err).Msg("fetching prs")
			continue
		}
		fetchedPRs = append(fetchedPRs, item.Out...)
	}

	var fetchedRefs []entities.Ref
	for i, item := range refItems {
		if item.Err != nil {
			log.Error().Str("component", "hubimport").Str("repo", repos[i].String()).Err(item.Err).Msg("fetching refs")
			continue
		}
		fetchedRefs = append(fetchedRefs, item.Out...)
	}

	commitSet := map[entities.Commit]struct{}{}
	for _, pr := range fetchedPRs {
		commitSet[pr.Head] = struct{}{}
	}
	for _, r := range fetchedRefs {
		commitSet[r.Head] = struct{}{}
	}
	commits := make([]entities.Commit, 0, len(commitSet))
	for c := range commitSet {
		commits = append(commits, c)
	}

	statusItems := concurrent.MapTolerant(commits, func(c entities.Commit) ([]entities.Status, error) {
		return client.Status(ctx, c)
	})
	var fetchedStatuses []entities.Status
	for i, item := range statusItems {
		if item.Err != nil {
			log.Error().Str("component", "hubimport").Str("commit", commits[i].String()).Err(item.Err).Msg("fetching statuses")
			continue
		}
		fetchedStatuses = append(fetchedStatuses, item.Out...)
	}

	result := closedPRSynthesis(old, repos, fetchedPRs)

	for _, pr := range fetchedPRs {
		result = result.ReplacePR(pr)
	}
	for _, r := range fetchedRefs {
		result = result.ReplaceRef(r)
	}
	for _, c := range commits {
		result = result.AddCommit(c)
	}
	for _, s := range fetchedStatuses {
		result = result.ReplaceStatus(s)
	}

	return result
}

func closedPRSynthesis(old snapshot.Snapshot, repos []entities.Repo, fetchedOpen []entities.PullRequest) snapshot.Snapshot {
	repoSet := map[entities.Repo]struct{}{}
	for _, r := range repos {
		repoSet[r] = struct{}{}
	}

	openInScope := map[entities.PRKey]entities.PullRequest{}
	for _, pr := range old.PRs() {
		if pr.State != entities.Open {
			continue
		}
		if _, inScope := repoSet[pr.Head.Repo]; !inScope {
			continue
		}
		openInScope[pr.Key()] = pr
	}

	gc := maputils.NewGC(openInScope)
	for _, pr := range fetchedOpen {
		gc.Lookup(pr.Key())
	}

	result := old
	for _, pr := range gc.GetUnaccessed() {
		closed := pr
		closed.State = entities.Closed
		result = result.ReplacePR(closed)
	}
	return result
}
