package memstore

import (
	"sync"

	"github.com/nexusbridge/hubstore/internal/store"
)

// Store is a small in-memory repository of branches and commits.
type Store struct {
	mu       sync.Mutex
	commits  map[string]*memCommit
	branches map[string]*memBranch
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		commits:  map[string]*memCommit{},
		branches: map[string]*memBranch{},
	}
}

func (s *Store) putCommit(c *memCommit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits[c.id] = c
}

// Branch returns the named branch, creating it (headless) on first
// access.
func (s *Store) Branch(name string) store.Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[name]
	if !ok {
		b = &memBranch{name: name, store: s}
		s.branches[name] = b
	}
	return b
}
