// Package hubexport diffs a new snapshot against an old one and issues
// the Hub write calls needed to catch the Hub up with that delta.
package hubexport

import (
	"context"

	"github.com/nexusbridge/hubstore/internal/entities"
	"github.com/nexusbridge/hubstore/internal/hub"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/rs/zerolog/log"
)

// CallAPI pushes the status and PR delta between old and new to the Hub.
// Refs are never pushed outward. When dry is true, deltas are still
// computed (and logged) but no Hub write call is made. Each call's
// failure is logged and does not abort the rest of the delta.
func CallAPI(ctx context.Context, client hub.Client, old, new snapshot.Snapshot, dry bool) error {
	for _, status := range new.Statuses() {
		existing, ok := old.Status(status.Key())
		if ok && statusEqual(existing, status) {
			continue
		}
		if dry {
			log.Info().Str("component", "hubexport").Str("commit", status.Commit.String()).Msg("dry-run: would set status")
			continue
		}
		if err := client.SetStatus(ctx, status); err != nil {
			log.Error().Str("component", "hubexport").Str("commit", status.Commit.String()).Err(err).Msg("setting status")
		}
	}

	for _, pr := range new.PRs() {
		existing, ok := old.PR(pr.Key())
		if ok && existing == pr {
			continue
		}
		if dry {
			log.Info().Str("component", "hubexport").Int("pr", pr.Number).Msg("dry-run: would set pr")
			continue
		}
		if err := client.SetPR(ctx, pr); err != nil {
			log.Error().Str("component", "hubexport").Int("pr", pr.Number).Err(err).Msg("setting pr")
		}
	}

	return nil
}

func statusEqual(a, b entities.Status) bool {
	if a.State != b.State {
		return false
	}
	if (a.URL == nil) != (b.URL == nil) || (a.URL != nil && *a.URL != *b.URL) {
		return false
	}
	if (a.Description == nil) != (b.Description == nil) || (a.Description != nil && *a.Description != *b.Description) {
		return false
	}
	return true
}
