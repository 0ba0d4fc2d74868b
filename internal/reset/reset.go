// Package reset rolls the per-day certified flags over once per calendar day.
package reset

import (
	"fmt"
	"time"

	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/utils"
)

// Store is the part of storage.Provider the scheduler needs.
type Store interface {
	GetSettings() (models.Settings, error)
	ResetCertifiedFlags(today string) error
}

// Due reports whether a reset is owed on today given the last reset date.
// A today at or before the marker (a clock that went backwards included)
// owes nothing.
func Due(lastReset, today string) bool {
	return lastReset == "" || today > lastReset
}

type Scheduler struct {
	store Store
}

func NewScheduler(store Store) *Scheduler {
	return &Scheduler{store: store}
}

// MaybeReset recomputes every routine's certified flag for the new date the
// first time it is called on a new calendar day and reports whether it did.
// A routine already certified that day keeps its flag. The certification log
// is never touched.
func (s *Scheduler) MaybeReset(now time.Time) (bool, error) {
	settings, err := s.store.GetSettings()
	if err != nil {
		return false, fmt.Errorf("failed to read reset marker: %w", err)
	}

	today := utils.DateOnly(now)
	if !Due(settings.LastResetDate, today) {
		if today < settings.LastResetDate {
			logger.Debug("Clock is behind last reset, skipping", "today", today, "last_reset", settings.LastResetDate)
		}
		return false, nil
	}

	if err := s.store.ResetCertifiedFlags(today); err != nil {
		return false, fmt.Errorf("failed to reset certified flags: %w", err)
	}
	logger.Info("Daily reset", "date", today, "previous", settings.LastResetDate)
	return true, nil
}
