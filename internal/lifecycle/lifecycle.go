// Package lifecycle archives goals whose date range has elapsed.
//
// A goal is active through the whole of its end date. On the first tick
// after that day the goal's outcome is frozen into a Record and the goal and
// its routines leave the store in the same write. The certification log is
// kept.
package lifecycle

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/flashdo/internal/certlog"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/utils"
)

// Store is the part of storage.Provider the manager needs.
type Store interface {
	LoadGoals() ([]models.Goal, error)
	LoadRoutines() ([]models.Routine, error)
	LoadCertifications() ([]models.Certification, error)
	ArchiveGoal(models.Record) error
}

// Ended reports whether goal is over on the calendar day today.
func Ended(goal models.Goal, today string) bool {
	return today > goal.EndDate
}

// BuildRecord computes the outcome of goal from the certifications of
// routineIDs.
func BuildRecord(goal models.Goal, routineIDs []string, log *certlog.Log, archivedAt time.Time) (models.Record, error) {
	span, err := utils.DaysBetween(goal.StartDate, goal.EndDate)
	if err != nil {
		return models.Record{}, fmt.Errorf("goal %s: %w", goal.ID, err)
	}
	total := span + 1
	if total < 1 {
		return models.Record{}, fmt.Errorf("goal %s ends before it starts", goal.ID)
	}
	completed := len(log.DistinctDates(routineIDs))

	return models.Record{
		ID:            uuid.NewString(),
		GoalID:        goal.ID,
		GoalName:      goal.Name,
		StartDate:     goal.StartDate,
		EndDate:       goal.EndDate,
		TotalDays:     total,
		CompletedDays: completed,
		SuccessRate:   SuccessRate(completed, total),
		ArchivedAt:    archivedAt,
	}, nil
}

// SuccessRate is 100*completed/total rounded half away from zero.
func SuccessRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Tick archives every goal that has ended as of now and returns the records
// it wrote. Calling it again for the same goals finds nothing to do.
func (m *Manager) Tick(now time.Time) ([]models.Record, error) {
	goals, err := m.store.LoadGoals()
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	var records []models.Record
	for _, g := range goals {
		rec, archived, err := m.TickGoal(g, now)
		if err != nil {
			return records, err
		}
		if archived {
			records = append(records, rec)
		}
	}
	return records, nil
}

// TickGoal archives goal if it has ended as of now. A goal that another
// caller archived first is reported as not archived.
func (m *Manager) TickGoal(goal models.Goal, now time.Time) (models.Record, bool, error) {
	if !Ended(goal, utils.DateOnly(now)) {
		return models.Record{}, false, nil
	}

	routines, err := m.store.LoadRoutines()
	if err != nil {
		return models.Record{}, false, fmt.Errorf("failed to load routines: %w", err)
	}
	var ids []string
	for _, r := range routines {
		if r.GoalID == goal.ID {
			ids = append(ids, r.ID)
		}
	}

	certs, err := m.store.LoadCertifications()
	if err != nil {
		return models.Record{}, false, fmt.Errorf("failed to load certifications: %w", err)
	}

	rec, err := BuildRecord(goal, ids, certlog.New(certs), now)
	if err != nil {
		return models.Record{}, false, err
	}

	if err := m.store.ArchiveGoal(rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Record{}, false, nil
		}
		return models.Record{}, false, fmt.Errorf("failed to archive goal %s: %w", goal.ID, err)
	}

	logger.Info("Goal archived", "goal", goal.Name, "completed", rec.CompletedDays, "total", rec.TotalDays, "rate", rec.SuccessRate)
	return rec, true, nil
}

// Progress is the "day N of total" view of a goal.
type Progress struct {
	Day       int
	TotalDays int
}

// ProgressOf places today within goal. Day is 0 before the start date and
// capped at TotalDays after the end date.
func ProgressOf(goal models.Goal, today string) (Progress, error) {
	span, err := utils.DaysBetween(goal.StartDate, goal.EndDate)
	if err != nil {
		return Progress{}, err
	}
	elapsed, err := utils.DaysBetween(goal.StartDate, today)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{Day: elapsed + 1, TotalDays: span + 1}
	p.Day = max(0, min(p.Day, p.TotalDays))
	return p, nil
}
