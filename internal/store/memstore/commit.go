package memstore

import (
	"github.com/google/uuid"
	"github.com/nexusbridge/hubstore/internal/store"
)

// memCommit is an immutable, content-addressed (by random id, not by
// hashing the tree — memstore favors simplicity over real content
// addressing) snapshot.
type memCommit struct {
	id      string
	parents []string
	tree    *memTree
	message string
}

// Message returns the commit message. It is not part of the store.Commit
// interface (the store contract itself is message-agnostic).
func (c *memCommit) Message() string { return c.message }

func newCommitID() string { return uuid.NewString() }

func (c *memCommit) ID() string      { return c.id }
func (c *memCommit) Tree() store.Tree { return c.tree }
