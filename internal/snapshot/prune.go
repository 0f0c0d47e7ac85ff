package snapshot

import "github.com/nexusbridge/hubstore/internal/entities"

// RepoCleanup is the per-repo result of Prune: what was dropped and
// whether anything was.
type RepoCleanup struct {
	Dirty          bool
	RemovedPRs     []entities.PullRequest
	RemovedCommits []entities.Commit
}

// Cleanup aggregates Prune's per-repo results. A Cleanup with Clean()
// true means the pruned snapshot is structurally identical to its input.
type Cleanup struct {
	PerRepo map[entities.Repo]RepoCleanup
}

// Clean reports whether Prune removed nothing from any repo.
func (c Cleanup) Clean() bool {
	for _, rc := range c.PerRepo {
		if rc.Dirty {
			return false
		}
	}
	return true
}

// RemovedPRs returns every closed PR dropped across all repos.
func (c Cleanup) RemovedPRs() []entities.PullRequest {
	var out []entities.PullRequest
	for _, rc := range c.PerRepo {
		out = append(out, rc.RemovedPRs...)
	}
	return out
}

// RemovedCommits returns every unreachable commit dropped across all repos.
func (c Cleanup) RemovedCommits() []entities.Commit {
	var out []entities.Commit
	for _, rc := range c.PerRepo {
		out = append(out, rc.RemovedCommits...)
	}
	return out
}

// Prune drops closed PRs, the statuses and commits only reachable through
// them, from s. Per repo:
//
//  1. PRs split into open and closed; closed PRs are dropped.
//  2. A status is reachable iff its commit is the head of an open PR or
//     the head of some ref.
//  3. Unreachable statuses are dropped.
//  4. A commit is reachable iff it is the head of an open PR, or the
//     subject of a reachable status. Commits referenced only by a ref or
//     by a closed PR are dropped — ref heads are tracked by the ref's own
//     Head field and need no independent commit record, matching AddRef.
//
// Refs are never pruned. This intentionally does not treat a ref's head
// commit as reachable by itself (step 4): a commit that is a ref head but
// carries no status and is not an open PR's head is still dropped, with
// the ref continuing to name it via Ref.Head alone.
func Prune(s Snapshot) (Snapshot, Cleanup) {
	out := Empty()
	cleanup := Cleanup{PerRepo: map[entities.Repo]RepoCleanup{}}

	for _, repo := range s.Repos() {
		out = out.AddRepo(repo)

		var openPRs, closedPRs []entities.PullRequest
		openHeads := map[entities.Commit]struct{}{}
		for _, pr := range s.PRs() {
			if pr.Head.Repo != repo {
				continue
			}
			if pr.State == entities.Closed {
				closedPRs = append(closedPRs, pr)
				continue
			}
			openPRs = append(openPRs, pr)
			openHeads[pr.Head] = struct{}{}
		}

		refHeads := map[entities.Commit]struct{}{}
		var refs []entities.Ref
		for _, r := range s.Refs() {
			if r.Head.Repo != repo {
				continue
			}
			refs = append(refs, r)
			refHeads[r.Head] = struct{}{}
		}

		var openStatuses []entities.Status
		openCommits := map[entities.Commit]struct{}{}
		for _, st := range s.Statuses() {
			if st.Commit.Repo != repo {
				continue
			}
			_, fromPR := openHeads[st.Commit]
			_, fromRef := refHeads[st.Commit]
			if !fromPR && !fromRef {
				continue
			}
			openStatuses = append(openStatuses, st)
			openCommits[st.Commit] = struct{}{}
		}
		for c := range openHeads {
			openCommits[c] = struct{}{}
		}

		var removedCommits []entities.Commit
		for _, c := range s.Commits() {
			if c.Repo != repo {
				continue
			}
			if _, ok := openCommits[c]; ok {
				continue
			}
			removedCommits = append(removedCommits, c)
		}

		for _, pr := range openPRs {
			out = out.AddPR(pr)
		}
		for _, r := range refs {
			out = out.AddRef(r)
		}
		for _, st := range openStatuses {
			out = out.AddStatus(st)
		}
		for c := range openCommits {
			if c.Repo == repo {
				out = out.AddCommit(c)
			}
		}

		cleanup.PerRepo[repo] = RepoCleanup{
			Dirty:          len(closedPRs) > 0 || len(removedCommits) > 0,
			RemovedPRs:     closedPRs,
			RemovedCommits: removedCommits,
		}
	}

	return out, cleanup
}
