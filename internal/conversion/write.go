package conversion

import (
	"strconv"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
)

// UpdatePR writes pr's subtree into tx. A PR transitioning to Closed has
// its entire subtree removed instead — closed PRs are not persisted, so
// pruning responsibility is partly delegated to write time. Writing an
// Open PR also creates its head commit's marker directory, matching
// AddPR's snapshot-side behavior of registering the head commit;
// UpdateRef deliberately does not do the same for ref heads.
func UpdatePR(tx store.Transaction, pr entities.PullRequest) error {
	base := repoPath(pr.Head.Repo) + "/pr/" + strconv.Itoa(pr.Number)
	if pr.State == entities.Closed {
		return tx.Remove(base)
	}

	if err := tx.MakeDirs(base); err != nil {
		return err
	}
	if err := tx.MakeDirs(repoPath(pr.Head.Repo) + "/commit/" + pr.Head.ID); err != nil {
		return err
	}
	if err := tx.CreateOrReplaceFile(base+"/head", pr.Head.ID+"\n"); err != nil {
		return err
	}
	if err := tx.CreateOrReplaceFile(base+"/state", pr.State.String()+"\n"); err != nil {
		return err
	}
	if pr.Title != "" {
		return tx.CreateOrReplaceFile(base+"/title", pr.Title+"\n")
	}
	return tx.Remove(base + "/title")
}

// UpdateRef writes ref's head pointer into tx.
func UpdateRef(tx store.Transaction, ref entities.Ref) error {
	base := repoPath(ref.Head.Repo) + "/ref/" + ref.Name
	if err := tx.MakeDirs(base); err != nil {
		return err
	}
	return tx.CreateOrReplaceFile(base+"/head", ref.Head.ID+"\n")
}

// UpdateStatus writes status's state/description/target_url files into
// tx, removing whichever of the optional fields is now nil.
func UpdateStatus(tx store.Transaction, status entities.Status) error {
	base := repoPath(status.Commit.Repo) + "/commit/" + status.Commit.ID + "/status"
	if status.Context != "" {
		base += "/" + status.Context
	}
	if err := tx.MakeDirs(base); err != nil {
		return err
	}
	if err := tx.CreateOrReplaceFile(base+"/state", status.State.String()+"\n"); err != nil {
		return err
	}
	if status.Description != nil {
		if err := tx.CreateOrReplaceFile(base+"/description", *status.Description+"\n"); err != nil {
			return err
		}
	} else if err := tx.Remove(base + "/description"); err != nil {
		return err
	}
	if status.URL != nil {
		return tx.CreateOrReplaceFile(base+"/target_url", *status.URL+"\n")
	}
	return tx.Remove(base + "/target_url")
}

// UpdatePRs writes every pr in prs into tx.
func UpdatePRs(tx store.Transaction, prs []entities.PullRequest) error {
	for _, pr := range prs {
		if err := UpdatePR(tx, pr); err != nil {
			return err
		}
	}
	return nil
}

// UpdateRefs writes every ref in refs into tx.
func UpdateRefs(tx store.Transaction, refs []entities.Ref) error {
	for _, ref := range refs {
		if err := UpdateRef(tx, ref); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatuses writes every status in statuses into tx.
func UpdateStatuses(tx store.Transaction, statuses []entities.Status) error {
	for _, status := range statuses {
		if err := UpdateStatus(tx, status); err != nil {
			return err
		}
	}
	return nil
}

// Write persists s's prs, statuses and refs into tx, the composite step
// the sync engine runs after import and prune.
func Write(tx store.Transaction, s snapshot.Snapshot) error {
	if err := UpdatePRs(tx, s.PRs()); err != nil {
		return err
	}
	if err := UpdateStatuses(tx, s.Statuses()); err != nil {
		return err
	}
	return UpdateRefs(tx, s.Refs())
}
