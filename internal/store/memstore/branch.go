package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/nexusbridge/hubstore/internal/store"
)

// memBranch is a named, mutable pointer to a commit. WaitForHead is
// implemented with a list of one-shot waiter channels closed on every
// head change, rather than a condition variable, so a cancelled wait
// never leaks a goroutine blocked on the branch's lock.
type memBranch struct {
	name  string
	store *Store

	mu      sync.Mutex
	head    *memCommit
	waiters []chan struct{}
}

func (b *memBranch) Name() string { return b.name }

func (b *memBranch) Head() (store.Commit, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.head == nil {
		return nil, false, nil
	}
	return b.head, true, nil
}

func (b *memBranch) Transaction() (store.Transaction, error) {
	b.mu.Lock()
	parent := b.head
	b.mu.Unlock()

	work := newMemTree()
	if parent != nil {
		work = parent.tree.clone()
	}
	return &transaction{memTree: work, branch: b, parent: parent}, nil
}

func (b *memBranch) WithTransaction(fn func(store.Transaction) error) error {
	tx, err := b.Transaction()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if !tx.Closed() {
			_ = tx.Abort()
		}
		return err
	}
	if !tx.Closed() {
		return fmt.Errorf("memstore: transaction left open by caller")
	}
	return nil
}

func (b *memBranch) FastForward(c store.Commit) error {
	mc, ok := c.(*memCommit)
	if !ok {
		return fmt.Errorf("memstore: cannot fast-forward to a foreign commit implementation")
	}
	b.setHead(mc)
	return nil
}

func (b *memBranch) WaitForHead(ctx context.Context) error {
	b.mu.Lock()
	ch := make(chan struct{})
	b.waiters = append(b.waiters, ch)
	b.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		b.removeWaiter(ch)
		return ctx.Err()
	}
}

func (b *memBranch) removeWaiter(target chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.waiters {
		if ch == target {
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			return
		}
	}
}

func (b *memBranch) setHead(c *memCommit) {
	b.mu.Lock()
	b.head = c
	waiters := b.waiters
	b.waiters = nil
	b.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}
