package conversion

import (
	"strconv"
	"strings"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
)

type pathKind int

const (
	kindIgnored pathKind = iota
	kindPR
	kindStatus
	kindRef
	kindUnknown
)

type classified struct {
	kind     pathKind
	repo     entities.Repo
	number   int
	commitID string
	context  string
	name     string
}

// classify assigns one of the diff-apply path kinds to path. Anything
// shallower than <user>/<repo> is ignored.
// A bare commit marker path (under commit/<id>/ but not under status/)
// deliberately classifies as Unknown rather than touching commits — see
// the preserved "possibly buggy" behavior in DESIGN.md.
func classify(path string) classified {
	segs := strings.Split(path, "/")
	if len(segs) < 2 {
		return classified{kind: kindIgnored}
	}
	repo := entities.Repo{User: segs[0], Name: segs[1]}
	rest := segs[2:]

	if len(rest) == 0 {
		return classified{kind: kindUnknown, repo: repo}
	}

	switch rest[0] {
	case "pr":
		if len(rest) >= 2 {
			if n, err := strconv.Atoi(rest[1]); err == nil {
				return classified{kind: kindPR, repo: repo, number: n}
			}
		}
	case "commit":
		if len(rest) >= 4 && rest[2] == "status" {
			ctx := strings.Join(rest[3:len(rest)-1], "/")
			return classified{kind: kindStatus, repo: repo, commitID: rest[1], context: ctx}
		}
	case "ref":
		if len(rest) >= 2 {
			name := strings.Join(rest[1:len(rest)-1], "/")
			if name != "" {
				return classified{kind: kindRef, repo: repo, name: name}
			}
		}
	}
	return classified{kind: kindUnknown, repo: repo}
}

func apply(tree store.Tree, s snapshot.Snapshot, change store.PathChange) (snapshot.Snapshot, error) {
	c := classify(change.Path)
	switch c.kind {
	case kindIgnored:
		return s, nil
	case kindUnknown:
		return s.AddRepo(c.repo), nil
	case kindPR:
		return applyPR(tree, s, c)
	case kindStatus:
		return applyStatus(tree, s, c)
	case kindRef:
		return applyRef(tree, s, c)
	default:
		return s, nil
	}
}

func applyPR(tree store.Tree, s snapshot.Snapshot, c classified) (snapshot.Snapshot, error) {
	pr, ok, err := readPR(tree, c.repo, strconv.Itoa(c.number))
	if err != nil {
		return snapshot.Empty(), err
	}
	if !ok {
		return s.RemovePR(c.repo, c.number), nil
	}
	return s.ReplacePR(pr), nil
}

func applyStatus(tree store.Tree, s snapshot.Snapshot, c classified) (snapshot.Snapshot, error) {
	dir := repoPath(c.repo) + "/commit/" + c.commitID + "/status"
	if c.context != "" {
		dir += "/" + c.context
	}
	commit := entities.Commit{Repo: c.repo, ID: c.commitID}

	hasState, err := tree.ExistsFile(dir + "/state")
	if err != nil {
		return snapshot.Empty(), err
	}
	if !hasState {
		s = s.RemoveStatus(commit, c.context)
	} else {
		st, err := readStatus(tree, c.repo, c.commitID, dir, c.context)
		if err != nil {
			return snapshot.Empty(), err
		}
		s = s.ReplaceStatus(st)
	}

	commitDir := repoPath(c.repo) + "/commit/" + c.commitID
	exists, err := tree.ExistsDir(commitDir)
	if err != nil {
		return snapshot.Empty(), err
	}
	if exists {
		s = s.AddCommit(commit)
	} else {
		s = s.RemoveCommit(c.repo, c.commitID)
	}
	return s, nil
}

func applyRef(tree store.Tree, s snapshot.Snapshot, c classified) (snapshot.Snapshot, error) {
	dir := repoPath(c.repo) + "/ref/" + c.name
	hasHead, err := tree.ExistsFile(dir + "/head")
	if err != nil {
		return snapshot.Empty(), err
	}
	if !hasHead {
		return s.RemoveRef(c.repo, c.name), nil
	}
	ref, err := readRef(tree, c.repo, dir, c.name)
	if err != nil {
		return snapshot.Empty(), err
	}
	return s.ReplaceRef(ref), nil
}
