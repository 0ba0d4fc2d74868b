package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/utils"
	"github.com/julianstephens/flashdo/internal/window"
)

var (
	ErrInvalidName      = errors.New("name must not be empty")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrInvalidFrequency = errors.New("frequency must name at least one weekday")
)

// ValidateGoal checks a goal before it is stored.
func ValidateGoal(g models.Goal) error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrInvalidName
	}
	if !utils.ValidateDateFormat(g.StartDate) {
		return fmt.Errorf("%w: start %q", ErrInvalidDate, g.StartDate)
	}
	if !utils.ValidateDateFormat(g.EndDate) {
		return fmt.Errorf("%w: end %q", ErrInvalidDate, g.EndDate)
	}
	if g.EndDate <= g.StartDate {
		return fmt.Errorf("%w: %s..%s", ErrInvalidDateRange, g.StartDate, g.EndDate)
	}
	return nil
}

// ValidateRoutine checks a routine before it is stored. The per-goal
// routine limit is the caller's concern.
func ValidateRoutine(r models.Routine) error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if _, err := window.Bands(r.Schedule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if len(r.Frequency) == 0 {
		return ErrInvalidFrequency
	}
	seen := make(map[models.WeekdayCode]bool)
	for _, code := range r.Frequency {
		if !isWeekdayCode(code) {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidFrequency, code)
		}
		if seen[code] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidFrequency, code)
		}
		seen[code] = true
	}
	return nil
}

func isWeekdayCode(c models.WeekdayCode) bool {
	for _, known := range models.AllWeekdays {
		if c == known {
			return true
		}
	}
	return false
}

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMultipleGoals          ConflictType = "multiple_goals"
	ConflictInvalidGoal            ConflictType = "invalid_goal"
	ConflictInvalidRoutine         ConflictType = "invalid_routine"
	ConflictOrphanRoutine          ConflictType = "orphan_routine"
	ConflictTooManyRoutines        ConflictType = "too_many_routines"
	ConflictDuplicateCertification ConflictType = "duplicate_certification"
	ConflictInvalidCertification   ConflictType = "invalid_certification"
	ConflictStaleFlag              ConflictType = "stale_certified_flag"
)

// Conflict is one problem found in persisted data.
type Conflict struct {
	Type        ConflictType
	Description string
	IDs         []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, ids []string, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: t, Description: fmt.Sprintf(format, args...), IDs: ids})
}

// Snapshot is the persisted state CheckStore inspects.
type Snapshot struct {
	Goals          []models.Goal
	Routines       []models.Routine
	Certifications []models.Certification
	Settings       models.Settings
}

// LoadSnapshot reads everything CheckStore needs from p.
func LoadSnapshot(p storage.Provider) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Goals, err = p.LoadGoals(); err != nil {
		return snap, fmt.Errorf("failed to load goals: %w", err)
	}
	if snap.Routines, err = p.LoadRoutines(); err != nil {
		return snap, fmt.Errorf("failed to load routines: %w", err)
	}
	if snap.Certifications, err = p.LoadCertifications(); err != nil {
		return snap, fmt.Errorf("failed to load certifications: %w", err)
	}
	if snap.Settings, err = p.GetSettings(); err != nil {
		return snap, fmt.Errorf("failed to load settings: %w", err)
	}
	return snap, nil
}

// CheckStore looks for data the tracker would never write itself. today is
// used to compare cached certified flags with the log once the day's reset
// has run.
func CheckStore(snap Snapshot, today string) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if len(snap.Goals) > 1 {
		ids := make([]string, len(snap.Goals))
		for i, g := range snap.Goals {
			ids[i] = g.ID
		}
		result.add(ConflictMultipleGoals, ids, "%d goals are stored, only one may be current", len(snap.Goals))
	}

	goals := make(map[string]models.Goal)
	for _, g := range snap.Goals {
		goals[g.ID] = g
		if err := ValidateGoal(g); err != nil {
			result.add(ConflictInvalidGoal, []string{g.ID}, "Goal %q is invalid: %v", g.Name, err)
		}
	}

	perGoal := make(map[string][]string)
	for _, r := range snap.Routines {
		if _, ok := goals[r.GoalID]; !ok {
			result.add(ConflictOrphanRoutine, []string{r.ID}, "Routine %q belongs to missing goal %s", r.Name, r.GoalID)
		}
		if err := ValidateRoutine(r); err != nil {
			result.add(ConflictInvalidRoutine, []string{r.ID}, "Routine %q is invalid: %v", r.Name, err)
		}
		perGoal[r.GoalID] = append(perGoal[r.GoalID], r.ID)
	}
	for goalID, ids := range perGoal {
		if len(ids) > constants.MaxRoutinesPerGoal {
			result.add(ConflictTooManyRoutines, ids, "Goal %s has %d routines (max %d)", goalID, len(ids), constants.MaxRoutinesPerGoal)
		}
	}

	certifiedToday := make(map[string]bool)
	seen := make(map[[2]string]bool)
	for _, c := range snap.Certifications {
		key := [2]string{c.RoutineID, c.Date}
		if seen[key] {
			result.add(ConflictDuplicateCertification, []string{c.RoutineID}, "Routine %s is certified twice on %s", c.RoutineID, c.Date)
			continue
		}
		seen[key] = true
		if !utils.ValidateDateFormat(c.Date) {
			result.add(ConflictInvalidCertification, []string{c.RoutineID}, "Certification of %s has invalid date %q", c.RoutineID, c.Date)
		}
		if c.Date == today {
			certifiedToday[c.RoutineID] = true
		}
	}

	if snap.Settings.LastResetDate == today {
		for _, r := range snap.Routines {
			if r.CertifiedToday != certifiedToday[r.ID] {
				result.add(ConflictStaleFlag, []string{r.ID}, "Routine %q certified flag is %v but the log says %v",
					r.Name, r.CertifiedToday, certifiedToday[r.ID])
			}
		}
	}

	return result
}
