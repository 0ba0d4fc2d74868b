// Package feed filters stories down to what a viewer may see right now.
package feed

import (
	"iter"
	"slices"
	"time"

	"github.com/julianstephens/flashdo/internal/models"
)

// Visible yields the unexpired stories among entries, newest first. The feed
// is blind unless the viewer has certified today: with the gate closed the
// sequence is empty whatever entries holds. The sequence can be ranged over
// any number of times and does not observe later changes to entries.
func Visible(entries []models.Story, now time.Time, viewerCertifiedToday bool) iter.Seq[models.Story] {
	if !viewerCertifiedToday {
		return func(func(models.Story) bool) {}
	}
	live := make([]models.Story, 0, len(entries))
	for _, s := range entries {
		if !s.Expired(now) {
			live = append(live, s)
		}
	}
	slices.SortStableFunc(live, func(a, b models.Story) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return slices.Values(live)
}

// Remaining returns how long s stays visible after now, or zero once expired.
func Remaining(s models.Story, now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
