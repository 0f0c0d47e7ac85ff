// Package entities defines the immutable value types shared by every layer
// of the bridge: repos, commits, pull requests, statuses, refs and events.
//
// Path-like fields (a Status's context, a Ref's name) are ordered
// sequences of segments, kept here as a single canonical "/"-joined
// string so that every entity stays comparable and can live as a map
// key or inside a mapset.Set without extra plumbing.
package entities

import "strings"

// Repo identifies a Hub repository by owner and name.
type Repo struct {
	User string
	Name string
}

func (r Repo) String() string {
	return r.User + "/" + r.Name
}

// Commit is an opaque, content-addressed identifier scoped to a repo.
// ID is never parsed or interpreted by the bridge.
type Commit struct {
	Repo Repo
	ID   string
}

func (c Commit) String() string {
	return c.Repo.String() + "@" + c.ID
}

// PRState is the open/closed lifecycle of a pull request.
type PRState int

const (
	Open PRState = iota
	Closed
)

func (s PRState) String() string {
	if s == Closed {
		return "closed"
	}
	return "open"
}

// ParsePRState parses the two persisted state strings. Any other value is
// a conversion error: malformed persisted state must abort a tree rebuild
// rather than silently default.
func ParsePRState(s string) (PRState, error) {
	switch s {
	case "open":
		return Open, nil
	case "closed":
		return Closed, nil
	default:
		return 0, &InvalidEnumError{Field: "pr.state", Value: s}
	}
}

// PullRequest is identified within its repo by Number. Head.Repo must equal
// the repo the PR belongs to.
type PullRequest struct {
	Head   Commit
	Number int
	State  PRState
	Title  string
}

func (pr PullRequest) Repo() Repo { return pr.Head.Repo }

// Key returns the identity of the PR within its repo.
func (pr PullRequest) Key() PRKey {
	return PRKey{Repo: pr.Head.Repo, Number: pr.Number}
}

// PRKey is the (repo, number) identity of a PullRequest.
type PRKey struct {
	Repo   Repo
	Number int
}

// StatusState is the state a commit status reports.
type StatusState int

const (
	StatusError StatusState = iota
	StatusPending
	StatusSuccess
	StatusFailure
)

func (s StatusState) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ParseStatusState parses the four persisted state strings.
func ParseStatusState(s string) (StatusState, error) {
	switch s {
	case "error":
		return StatusError, nil
	case "pending":
		return StatusPending, nil
	case "success":
		return StatusSuccess, nil
	case "failure":
		return StatusFailure, nil
	default:
		return 0, &InvalidEnumError{Field: "status.state", Value: s}
	}
}

// DefaultContext is the logical context used when a Status carries no
// explicit context segments.
const DefaultContext = "default"

// Status reports a commit status, identified within its commit by Context.
// Context is a canonical "/"-joined path; the empty string means the
// logical context ["default"].
type Status struct {
	Commit      Commit
	Context     string
	URL         *string
	Description *string
	State       StatusState
}

// Key returns the identity of the status within its commit.
func (s Status) Key() StatusKey {
	return StatusKey{Commit: s.Commit, Context: s.Context}
}

// DisplayContext returns the logical context, substituting DefaultContext
// for an empty path.
func (s Status) DisplayContext() string {
	if s.Context == "" {
		return DefaultContext
	}
	return s.Context
}

// StatusKey is the (commit, context) identity of a Status.
type StatusKey struct {
	Commit  Commit
	Context string
}

// Ref is a named pointer to a commit, identified within its repo by Name.
// Ref commits are not required to also appear in a Snapshot's commit set
// (see the Snapshot invariants in internal/snapshot).
type Ref struct {
	Head Commit
	Name string
}

// Key returns the identity of the ref within its repo.
func (r Ref) Key() RefKey {
	return RefKey{Repo: r.Head.Repo, Name: r.Name}
}

// RefKey is the (repo, name) identity of a Ref.
type RefKey struct {
	Repo Repo
	Name string
}

// Segments splits a canonical "/"-joined path into its ordered segments.
// An empty path yields an empty (not nil-free) slice.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// JoinSegments is the inverse of Segments.
func JoinSegments(segs []string) string {
	return strings.Join(segs, "/")
}

// EventKind tags the payload carried by an Event.
type EventKind int

const (
	EventPR EventKind = iota
	EventStatus
	EventRef
	EventOther
)

// Event is the tagged union of things the Hub can notify the bridge about.
// Exactly one of PR/Status/Ref/Other is meaningful, selected by Kind.
type Event struct {
	Kind   EventKind
	Repo   Repo
	PR     *PullRequest
	Status *Status
	Ref    *Ref
	Other  string
}

// InvalidEnumError is a Conversion error: a persisted enum field held a
// value outside its known set. It aborts whatever rebuild encountered it.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return "invalid value " + `"` + e.Value + `"` + " for " + e.Field
}
