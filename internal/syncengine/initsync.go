package syncengine

import (
	"fmt"

	"github.com/nexusbridge/hubstore/internal/store"
)

const readmeContent = "This branch is managed by hubstore. Do not delete this file.\n"

// InitSync ensures pub and priv both exist and share an ancestor:
//
//   - both empty: write a README on priv, commit "Initial commit", then
//     fast-forward pub to priv.
//   - pub empty, priv non-empty: fast-forward pub to priv.
//   - priv empty, pub non-empty: fast-forward priv to pub.
//   - both non-empty: no-op.
func InitSync(pub, priv store.Branch) error {
	pubHead, pubOK, err := pub.Head()
	if err != nil {
		return &StoreError{Err: fmt.Errorf("initsync: reading %s head: %w", pub.Name(), err)}
	}
	privHead, privOK, err := priv.Head()
	if err != nil {
		return &StoreError{Err: fmt.Errorf("initsync: reading %s head: %w", priv.Name(), err)}
	}

	switch {
	case !pubOK && !privOK:
		tx, err := priv.Transaction()
		if err != nil {
			return &StoreError{Err: fmt.Errorf("initsync: opening %s transaction: %w", priv.Name(), err)}
		}
		if err := tx.CreateOrReplaceFile("README", readmeContent); err != nil {
			_ = tx.Abort()
			return &StoreError{Err: fmt.Errorf("initsync: seeding %s: %w", priv.Name(), err)}
		}
		c, err := tx.Commit("Initial commit")
		if err != nil {
			return &StoreError{Err: fmt.Errorf("initsync: committing %s: %w", priv.Name(), err)}
		}
		if err := pub.FastForward(c); err != nil {
			return &StoreError{Err: fmt.Errorf("initsync: fast-forwarding %s: %w", pub.Name(), err)}
		}
	case !pubOK && privOK:
		if err := pub.FastForward(privHead); err != nil {
			return &StoreError{Err: fmt.Errorf("initsync: fast-forwarding %s: %w", pub.Name(), err)}
		}
	case pubOK && !privOK:
		if err := priv.FastForward(pubHead); err != nil {
			return &StoreError{Err: fmt.Errorf("initsync: fast-forwarding %s: %w", priv.Name(), err)}
		}
	}
	return nil
}
