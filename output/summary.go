package output

import (
	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/snapshot"
)

// TickSummary reports what a single sync tick changed, comparing the
// repos, PRs and statuses known before and after the tick ran.
func TickSummary(p Printer, before, after snapshot.Snapshot) {
	repos := after.Repos()
	if len(repos) == 0 {
		p.Printf("no repos tracked\n")
		return
	}

	p.Printf("tracking %d repo(s)\n", len(repos))
	for _, pr := range after.PRs() {
		old, existed := before.PR(entities.PRKey{Repo: pr.Head.Repo, Number: pr.Number})
		switch {
		case !existed:
			p.Printf("  + %s#%d %s (%s)\n", pr.Head.Repo, pr.Number, pr.Title, pr.State)
		case old.State != pr.State:
			p.Printf("  ~ %s#%d %s -> %s\n", pr.Head.Repo, pr.Number, old.State, pr.State)
		}
	}

	for _, st := range after.Statuses() {
		old, existed := before.Status(entities.StatusKey{Commit: st.Commit, Context: st.Context})
		if !existed || old.State != st.State {
			p.Printf("  status %s@%s: %s\n", st.Context, st.Commit.ID, st.State)
		}
	}
}
