// Package conversion translates between a Store tree and a snapshot.Snapshot.
// SnapshotOfTree does a full rebuild by walking the tree layout;
// BuildSnapshot prefers an incremental diff-apply against a previously
// known snapshot when one is available, and both paths are required to
// agree on the same tree.
package conversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
)

func trim(s string) string { return strings.TrimSpace(s) }

func repoPath(repo entities.Repo) string { return repo.User + "/" + repo.Name }

// SnapshotOfTree performs a full rebuild of a snapshot from tree.
func SnapshotOfTree(tree store.Tree) (snapshot.Snapshot, error) {
	s := snapshot.Empty()

	users, err := tree.ReadDir("")
	if err != nil {
		return snapshot.Empty(), fmt.Errorf("conversion: listing users: %w", err)
	}

	for _, user := range users {
		repoNames, err := tree.ReadDir(user)
		if err != nil {
			return snapshot.Empty(), fmt.Errorf("conversion: listing repos for %q: %w", user, err)
		}
		for _, name := range repoNames {
			repo := entities.Repo{User: user, Name: name}
			s = s.AddRepo(repo)

			s, err = readPRs(tree, s, repo)
			if err != nil {
				return snapshot.Empty(), err
			}
			s, err = readCommitsAndStatuses(tree, s, repo)
			if err != nil {
				return snapshot.Empty(), err
			}
			s, err = readRefs(tree, s, repo)
			if err != nil {
				return snapshot.Empty(), err
			}
		}
	}

	return s, nil
}

func readPRs(tree store.Tree, s snapshot.Snapshot, repo entities.Repo) (snapshot.Snapshot, error) {
	base := repoPath(repo) + "/pr"
	ok, err := tree.ExistsDir(base)
	if err != nil || !ok {
		return s, err
	}
	numbers, err := tree.ReadDir(base)
	if err != nil {
		return s, fmt.Errorf("conversion: listing PRs for %s: %w", repo, err)
	}
	for _, numStr := range numbers {
		pr, ok, err := readPR(tree, repo, numStr)
		if err != nil {
			return snapshot.Empty(), err
		}
		if ok {
			s = s.AddPR(pr)
		}
	}
	return s, nil
}

// readPR reads one pr/<N> subtree. Entries missing head or state are
// skipped rather than erroring, per the tree layout's "skip entries
// missing head or state" rule.
func readPR(tree store.Tree, repo entities.Repo, numStr string) (entities.PullRequest, bool, error) {
	base := repoPath(repo) + "/pr/" + numStr

	hasHead, err := tree.ExistsFile(base + "/head")
	if err != nil {
		return entities.PullRequest{}, false, err
	}
	hasState, err := tree.ExistsFile(base + "/state")
	if err != nil {
		return entities.PullRequest{}, false, err
	}
	if !hasHead || !hasState {
		return entities.PullRequest{}, false, nil
	}

	headRaw, err := tree.ReadFile(base + "/head")
	if err != nil {
		return entities.PullRequest{}, false, err
	}
	stateRaw, err := tree.ReadFile(base + "/state")
	if err != nil {
		return entities.PullRequest{}, false, err
	}
	state, err := entities.ParsePRState(trim(stateRaw))
	if err != nil {
		return entities.PullRequest{}, false, fmt.Errorf("conversion: %s pr %s: %w", repo, numStr, err)
	}

	title := ""
	if hasTitle, _ := tree.ExistsFile(base + "/title"); hasTitle {
		raw, err := tree.ReadFile(base + "/title")
		if err != nil {
			return entities.PullRequest{}, false, err
		}
		title = trim(raw)
	}

	n, err := strconv.Atoi(numStr)
	if err != nil {
		return entities.PullRequest{}, false, fmt.Errorf("conversion: %s invalid pr number %q: %w", repo, numStr, err)
	}

	return entities.PullRequest{
		Head:   entities.Commit{Repo: repo, ID: trim(headRaw)},
		Number: n,
		State:  state,
		Title:  title,
	}, true, nil
}

func readCommitsAndStatuses(tree store.Tree, s snapshot.Snapshot, repo entities.Repo) (snapshot.Snapshot, error) {
	base := repoPath(repo) + "/commit"
	ok, err := tree.ExistsDir(base)
	if err != nil || !ok {
		return s, err
	}
	ids, err := tree.ReadDir(base)
	if err != nil {
		return s, fmt.Errorf("conversion: listing commits for %s: %w", repo, err)
	}
	for _, id := range ids {
		s = s.AddCommit(entities.Commit{Repo: repo, ID: id})

		statusRoot := base + "/" + id + "/status"
		hasStatuses, err := tree.ExistsDir(statusRoot)
		if err != nil {
			return snapshot.Empty(), err
		}
		if !hasStatuses {
			continue
		}
		dirs, err := walk(tree, statusRoot, "state")
		if err != nil {
			return snapshot.Empty(), fmt.Errorf("conversion: walking statuses for %s@%s: %w", repo, id, err)
		}
		for _, dir := range dirs {
			ctx := ""
			if dir != statusRoot {
				ctx = strings.TrimPrefix(dir, statusRoot+"/")
			}
			st, err := readStatus(tree, repo, id, dir, ctx)
			if err != nil {
				return snapshot.Empty(), err
			}
			s = s.AddStatus(st)
		}
	}
	return s, nil
}

func readStatus(tree store.Tree, repo entities.Repo, commitID, dir, ctx string) (entities.Status, error) {
	stateRaw, err := tree.ReadFile(dir + "/state")
	if err != nil {
		return entities.Status{}, err
	}
	state, err := entities.ParseStatusState(trim(stateRaw))
	if err != nil {
		return entities.Status{}, fmt.Errorf("conversion: %s@%s status %q: %w", repo, commitID, ctx, err)
	}

	var urlPtr, descPtr *string
	if hasURL, _ := tree.ExistsFile(dir + "/target_url"); hasURL {
		raw, err := tree.ReadFile(dir + "/target_url")
		if err != nil {
			return entities.Status{}, err
		}
		v := trim(raw)
		urlPtr = &v
	}
	if hasDesc, _ := tree.ExistsFile(dir + "/description"); hasDesc {
		raw, err := tree.ReadFile(dir + "/description")
		if err != nil {
			return entities.Status{}, err
		}
		v := trim(raw)
		descPtr = &v
	}

	return entities.Status{
		Commit:      entities.Commit{Repo: repo, ID: commitID},
		Context:     ctx,
		URL:         urlPtr,
		Description: descPtr,
		State:       state,
	}, nil
}

func readRefs(tree store.Tree, s snapshot.Snapshot, repo entities.Repo) (snapshot.Snapshot, error) {
	base := repoPath(repo) + "/ref"
	ok, err := tree.ExistsDir(base)
	if err != nil || !ok {
		return s, err
	}
	dirs, err := walk(tree, base, "head")
	if err != nil {
		return snapshot.Empty(), fmt.Errorf("conversion: walking refs for %s: %w", repo, err)
	}
	for _, dir := range dirs {
		name := strings.TrimPrefix(dir, base+"/")
		ref, err := readRef(tree, repo, dir, name)
		if err != nil {
			return snapshot.Empty(), err
		}
		s = s.AddRef(ref)
	}
	return s, nil
}

func readRef(tree store.Tree, repo entities.Repo, dir, name string) (entities.Ref, error) {
	raw, err := tree.ReadFile(dir + "/head")
	if err != nil {
		return entities.Ref{}, err
	}
	return entities.Ref{Head: entities.Commit{Repo: repo, ID: trim(raw)}, Name: name}, nil
}

// Previous is the cached (commit, snapshot) pair BuildSnapshot needs to
// diff-apply incrementally instead of doing a full rebuild.
type Previous struct {
	Commit   store.Commit
	Snapshot snapshot.Snapshot
}

// BuildSnapshot returns tree's snapshot, rebuilding fully when old is nil
// and diff-applying against old.Snapshot otherwise. Both paths must agree
// on the same tree.
func BuildSnapshot(tree store.Tree, old *Previous) (snapshot.Snapshot, error) {
	if old == nil {
		return SnapshotOfTree(tree)
	}

	changes, err := tree.Diff(old.Commit.Tree())
	if err != nil {
		return snapshot.Empty(), fmt.Errorf("conversion: diffing against previous commit: %w", err)
	}

	s := old.Snapshot
	for _, change := range changes {
		s, err = apply(tree, s, change)
		if err != nil {
			return snapshot.Empty(), err
		}
	}
	return s, nil
}
