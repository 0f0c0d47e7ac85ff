// Package snapshot holds the in-memory set-of-entities value type that the
// rest of the bridge passes around: Conversion reads one from a Store tree
// and writes one back, HubImport folds Hub responses into one, HubExport
// diffs two of them, and the sync engine threads them between branch
// views. Snapshots are plain values — every mutator returns a new
// Snapshot rather than mutating in place, which keeps them freely
// shareable across goroutines doing concurrent Hub I/O.
package snapshot

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/nexusbridge/hubstore/internal/entities"
)

// Snapshot is the collected view of Hub state the bridge knows about:
// repos, commits, pull requests, statuses and refs. Every mutator below
// preserves the invariant that a PR or status can't be added without its
// owning repo and commit also becoming known; a ref registers its repo
// only (see AddRef).
type Snapshot struct {
	repos    mapset.Set[entities.Repo]
	commits  mapset.Set[entities.Commit]
	prs      map[entities.PRKey]entities.PullRequest
	statuses map[entities.StatusKey]entities.Status
	refs     map[entities.RefKey]entities.Ref
}

// Empty returns a Snapshot with no entities.
func Empty() Snapshot {
	return Snapshot{
		repos:    mapset.NewSet[entities.Repo](),
		commits:  mapset.NewSet[entities.Commit](),
		prs:      map[entities.PRKey]entities.PullRequest{},
		statuses: map[entities.StatusKey]entities.Status{},
		refs:     map[entities.RefKey]entities.Ref{},
	}
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		repos:    s.repos.Clone(),
		commits:  s.commits.Clone(),
		prs:      make(map[entities.PRKey]entities.PullRequest, len(s.prs)),
		statuses: make(map[entities.StatusKey]entities.Status, len(s.statuses)),
		refs:     make(map[entities.RefKey]entities.Ref, len(s.refs)),
	}
	for k, v := range s.prs {
		out.prs[k] = v
	}
	for k, v := range s.statuses {
		out.statuses[k] = v
	}
	for k, v := range s.refs {
		out.refs[k] = v
	}
	return out
}

// Union returns the set-wise union of a and b across all five collections.
func Union(a, b Snapshot) Snapshot {
	out := a.clone()
	out.repos = out.repos.Union(b.repos)
	out.commits = out.commits.Union(b.commits)
	for k, v := range b.prs {
		out.prs[k] = v
	}
	for k, v := range b.statuses {
		out.statuses[k] = v
	}
	for k, v := range b.refs {
		out.refs[k] = v
	}
	return out
}

// AddRepo registers a bare repo with no other entity. Every other Add*
// operation already registers the repo(s) its entity touches; AddRepo
// exists for callers — notably the Conversion "Unknown" diff branch — that
// only learn a repo is in play without learning anything else about it.
func (s Snapshot) AddRepo(r entities.Repo) Snapshot {
	out := s.clone()
	out.repos.Add(r)
	return out
}

// AddCommit inserts c and its repo.
func (s Snapshot) AddCommit(c entities.Commit) Snapshot {
	out := s.clone()
	out.repos.Add(c.Repo)
	out.commits.Add(c)
	return out
}

// RemoveCommit removes the commit with matching (repo, id), if any. It does
// not touch dependents (PRs, statuses referencing the commit are left
// alone).
func (s Snapshot) RemoveCommit(repo entities.Repo, id string) Snapshot {
	out := s.clone()
	out.commits.Remove(entities.Commit{Repo: repo, ID: id})
	return out
}

// ReplaceCommit removes any commit with c's identity then inserts c. Since
// Commit's identity is its full value, this is equivalent to AddCommit.
func (s Snapshot) ReplaceCommit(c entities.Commit) Snapshot {
	return s.RemoveCommit(c.Repo, c.ID).AddCommit(c)
}

// AddPR inserts pr, its head commit, and its repo.
func (s Snapshot) AddPR(pr entities.PullRequest) Snapshot {
	out := s.AddCommit(pr.Head)
	out.prs[pr.Key()] = pr
	return out
}

// RemovePR removes the PR identified by (repo, number), if any.
func (s Snapshot) RemovePR(repo entities.Repo, number int) Snapshot {
	out := s.clone()
	delete(out.prs, entities.PRKey{Repo: repo, Number: number})
	return out
}

// ReplacePR removes any PR with pr's identity then inserts pr. Map
// assignment already enforces by-identity uniqueness, so this is
// equivalent to AddPR.
func (s Snapshot) ReplacePR(pr entities.PullRequest) Snapshot {
	return s.AddPR(pr)
}

// AddStatus inserts status, its commit, and its commit's repo.
func (s Snapshot) AddStatus(status entities.Status) Snapshot {
	out := s.AddCommit(status.Commit)
	out.statuses[status.Key()] = status
	return out
}

// RemoveStatus removes the status identified by (commit, context), if any.
func (s Snapshot) RemoveStatus(commit entities.Commit, context string) Snapshot {
	out := s.clone()
	delete(out.statuses, entities.StatusKey{Commit: commit, Context: context})
	return out
}

// ReplaceStatus is equivalent to AddStatus; see ReplacePR.
func (s Snapshot) ReplaceStatus(status entities.Status) Snapshot {
	return s.AddStatus(status)
}

// AddRef inserts r and its repo, but deliberately not r.Head as a commit:
// ref heads are tracked by the ref's own Head field and need no
// independent commit record.
func (s Snapshot) AddRef(r entities.Ref) Snapshot {
	out := s.clone()
	out.repos.Add(r.Head.Repo)
	out.refs[r.Key()] = r
	return out
}

// RemoveRef removes the ref identified by (repo, name), if any.
func (s Snapshot) RemoveRef(repo entities.Repo, name string) Snapshot {
	out := s.clone()
	delete(out.refs, entities.RefKey{Repo: repo, Name: name})
	return out
}

// ReplaceRef is equivalent to AddRef; see ReplacePR.
func (s Snapshot) ReplaceRef(r entities.Ref) Snapshot {
	return s.AddRef(r)
}

// Repos returns the set of repos in canonical (user, name) order.
func (s Snapshot) Repos() []entities.Repo {
	out := s.repos.ToSlice()
	sort.Slice(out, func(i, j int) bool { return lessRepo(out[i], out[j]) })
	return out
}

// HasRepo reports whether repo is registered in this snapshot.
func (s Snapshot) HasRepo(repo entities.Repo) bool {
	return s.repos.Contains(repo)
}

// Commits returns the set of commits in canonical (repo, id) order.
func (s Snapshot) Commits() []entities.Commit {
	out := s.commits.ToSlice()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Repo != out[j].Repo {
			return lessRepo(out[i].Repo, out[j].Repo)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// HasCommit reports whether commit is registered in this snapshot.
func (s Snapshot) HasCommit(c entities.Commit) bool {
	return s.commits.Contains(c)
}

// PRs returns the pull requests in canonical (repo, number) order.
func (s Snapshot) PRs() []entities.PullRequest {
	out := make([]entities.PullRequest, 0, len(s.prs))
	for _, pr := range s.prs {
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Head.Repo != out[j].Head.Repo {
			return lessRepo(out[i].Head.Repo, out[j].Head.Repo)
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// PR looks up a pull request by identity.
func (s Snapshot) PR(key entities.PRKey) (entities.PullRequest, bool) {
	pr, ok := s.prs[key]
	return pr, ok
}

// Statuses returns the statuses in canonical (commit, context) order.
func (s Snapshot) Statuses() []entities.Status {
	out := make([]entities.Status, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commit != out[j].Commit {
			return lessCommit(out[i].Commit, out[j].Commit)
		}
		return out[i].Context < out[j].Context
	})
	return out
}

// Status looks up a status by identity.
func (s Snapshot) Status(key entities.StatusKey) (entities.Status, bool) {
	st, ok := s.statuses[key]
	return st, ok
}

// Refs returns the refs in canonical (repo, name) order.
func (s Snapshot) Refs() []entities.Ref {
	out := make([]entities.Ref, 0, len(s.refs))
	for _, r := range s.refs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Head.Repo != out[j].Head.Repo {
			return lessRepo(out[i].Head.Repo, out[j].Head.Repo)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Ref looks up a ref by identity.
func (s Snapshot) Ref(key entities.RefKey) (entities.Ref, bool) {
	r, ok := s.refs[key]
	return r, ok
}

// Equal reports whether s and o hold structurally identical entities.
func (s Snapshot) Equal(o Snapshot) bool {
	if !s.repos.Equal(o.repos) || !s.commits.Equal(o.commits) {
		return false
	}
	if len(s.prs) != len(o.prs) || len(s.statuses) != len(o.statuses) || len(s.refs) != len(o.refs) {
		return false
	}
	for k, v := range s.prs {
		if ov, ok := o.prs[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range s.statuses {
		ov, ok := o.statuses[k]
		if !ok || !statusEqual(v, ov) {
			return false
		}
	}
	for k, v := range s.refs {
		if ov, ok := o.refs[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func statusEqual(a, b entities.Status) bool {
	if a.Commit != b.Commit || a.Context != b.Context || a.State != b.State {
		return false
	}
	return strPtrEqual(a.URL, b.URL) && strPtrEqual(a.Description, b.Description)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func lessRepo(a, b entities.Repo) bool {
	if a.User != b.User {
		return a.User < b.User
	}
	return a.Name < b.Name
}

func lessCommit(a, b entities.Commit) bool {
	if a.Repo != b.Repo {
		return lessRepo(a.Repo, b.Repo)
	}
	return a.ID < b.ID
}
