// Package tracker ties the core components to a store.
//
// It owns the single current goal, the certification write path and the read
// models shown by the shells. Every operation reads the clock once, in the
// timezone from the store's settings, so one call sees one calendar day.
package tracker

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/flashdo/internal/certlog"
	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/feed"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/lifecycle"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/media"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/reset"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/streak"
	"github.com/julianstephens/flashdo/internal/utils"
	"github.com/julianstephens/flashdo/internal/validation"
	"github.com/julianstephens/flashdo/internal/window"
)

var (
	ErrNoActiveGoal    = errors.New("no active goal")
	ErrGoalExists      = errors.New("a goal is already in progress")
	ErrRoutineLimit    = fmt.Errorf("a goal can have at most %d routines", constants.MaxRoutinesPerGoal)
	ErrRoutineNotFound = errors.New("routine not found in the current goal")
	ErrNoUploader      = errors.New("no media uploader configured")
)

// Status is the outcome of a certification attempt that did not fail.
type Status string

const (
	StatusAccepted         Status = "accepted"
	StatusAlreadyCertified Status = "already_certified"
	StatusOutsideWindow    Status = "outside_window"
)

// Result is returned by Certify. Certification is set for accepted and
// already-certified attempts; Story only for accepted ones.
type Result struct {
	Status        Status               `json:"status"`
	Certification models.Certification `json:"certification,omitzero"`
	Story         models.Story         `json:"story,omitzero"`
}

func (r Result) Accepted() bool {
	return r.Status == StatusAccepted
}

// Proof is the already-uploaded media attached to a certification. An empty
// MediaRef certifies with a caption-only story.
type Proof struct {
	MediaRef  string
	MediaType models.MediaType
	Caption   string
}

type Tracker struct {
	mu        sync.RWMutex
	store     storage.Provider
	clock     clock.Clock
	identity  identity.Provider
	uploader  media.Uploader
	lifecycle *lifecycle.Manager
	reset     *reset.Scheduler
}

type Option func(*Tracker)

func WithIdentity(p identity.Provider) Option {
	return func(t *Tracker) { t.identity = p }
}

func WithUploader(u media.Uploader) Option {
	return func(t *Tracker) { t.uploader = u }
}

// New returns a tracker over a store that has already been loaded. Without
// WithIdentity the user id lives in the store's settings only.
func New(store storage.Provider, clk clock.Clock, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		clock:     clk,
		lifecycle: lifecycle.NewManager(store),
		reset:     reset.NewScheduler(store),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.identity == nil {
		t.identity = identity.NewLocal(store, false)
	}
	return t
}

// now must be called with t.mu held.
func (t *Tracker) now() (time.Time, error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	return t.clock.Now().In(loc), nil
}

// Now is the clock's time in the configured timezone.
func (t *Tracker) Now() (time.Time, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.now()
}

// currentGoal returns the stored goal that has not ended as of today.
func (t *Tracker) currentGoal(today string) (models.Goal, error) {
	goals, err := t.store.LoadGoals()
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to load goals: %w", err)
	}
	for _, g := range goals {
		if !lifecycle.Ended(g, today) {
			return g, nil
		}
	}
	return models.Goal{}, ErrNoActiveGoal
}

func (t *Tracker) routinesOf(goalID string) ([]models.Routine, error) {
	all, err := t.store.LoadRoutines()
	if err != nil {
		return nil, fmt.Errorf("failed to load routines: %w", err)
	}
	var out []models.Routine
	for _, r := range all {
		if r.GoalID == goalID {
			out = append(out, r)
		}
	}
	return out, nil
}

func routineIDs(routines []models.Routine) []string {
	ids := make([]string, len(routines))
	for i, r := range routines {
		ids[i] = r.ID
	}
	return ids
}

func (t *Tracker) log() (*certlog.Log, error) {
	certs, err := t.store.LoadCertifications()
	if err != nil {
		return nil, fmt.Errorf("failed to load certifications: %w", err)
	}
	log := certlog.New(certs)
	if log.Len() != len(certs) {
		logger.Warn("Duplicate certifications ignored", "stored", len(certs), "kept", log.Len())
	}
	return log, nil
}

// GoalInput describes a new goal. EndDate is derived from PeriodDays when it
// is positive. An empty StartDate means today.
type GoalInput struct {
	Name       string
	StartDate  string
	EndDate    string
	PeriodDays int
	IsPublic   bool
}

// CreateGoal stores a new current goal. Goals that have already ended are
// archived first; any other stored goal blocks creation.
func (t *Tracker) CreateGoal(in GoalInput) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, err := t.now()
	if err != nil {
		return models.Goal{}, err
	}
	if _, err := t.lifecycle.Tick(now); err != nil {
		return models.Goal{}, err
	}

	goals, err := t.store.LoadGoals()
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to load goals: %w", err)
	}
	if len(goals) > 0 {
		return models.Goal{}, fmt.Errorf("%w: %s", ErrGoalExists, goals[0].Name)
	}

	start := cmp.Or(in.StartDate, utils.DateOnly(now))
	end := in.EndDate
	if in.PeriodDays > 0 {
		if end, err = utils.AddDays(start, in.PeriodDays); err != nil {
			return models.Goal{}, fmt.Errorf("%w: %v", validation.ErrInvalidDate, err)
		}
	}

	goal := models.Goal{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		StartDate: start,
		EndDate:   end,
		IsPublic:  in.IsPublic,
		CreatedAt: now,
	}
	if err := validation.ValidateGoal(goal); err != nil {
		return models.Goal{}, err
	}
	if err := t.store.SaveGoals([]models.Goal{goal}); err != nil {
		return models.Goal{}, fmt.Errorf("failed to save goal: %w", err)
	}

	logger.Info("Goal created", "goal", goal.Name, "start", goal.StartDate, "end", goal.EndDate)
	return goal, nil
}

// CurrentGoal returns the goal in progress.
func (t *Tracker) CurrentGoal() (models.Goal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return models.Goal{}, err
	}
	return t.currentGoal(utils.DateOnly(now))
}

// RoutineInput describes a routine to add to the current goal.
type RoutineInput struct {
	Name      string
	Schedule  models.Schedule
	Frequency []models.WeekdayCode
}

// AddRoutine attaches a routine to the current goal. A goal that already
// has the maximum number of routines is left untouched.
func (t *Tracker) AddRoutine(in RoutineInput) (models.Routine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, err := t.now()
	if err != nil {
		return models.Routine{}, err
	}
	goal, err := t.currentGoal(utils.DateOnly(now))
	if err != nil {
		return models.Routine{}, err
	}

	all, err := t.store.LoadRoutines()
	if err != nil {
		return models.Routine{}, fmt.Errorf("failed to load routines: %w", err)
	}
	count := 0
	for _, r := range all {
		if r.GoalID == goal.ID {
			count++
		}
	}
	if count >= constants.MaxRoutinesPerGoal {
		return models.Routine{}, ErrRoutineLimit
	}

	routine := models.Routine{
		ID:        uuid.NewString(),
		GoalID:    goal.ID,
		Name:      strings.TrimSpace(in.Name),
		Schedule:  in.Schedule,
		Frequency: in.Frequency,
		CreatedAt: now,
	}
	if err := validation.ValidateRoutine(routine); err != nil {
		return models.Routine{}, err
	}
	if err := t.store.SaveRoutines(append(all, routine)); err != nil {
		return models.Routine{}, fmt.Errorf("failed to save routine: %w", err)
	}

	logger.Info("Routine added", "routine", routine.Name, "schedule", routine.Schedule.String(), "goal", goal.Name)
	return routine, nil
}

// Routines lists the routines of the current goal with their certified flag
// taken from the log.
func (t *Tracker) Routines() ([]models.Routine, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return nil, err
	}
	today := utils.DateOnly(now)
	goal, err := t.currentGoal(today)
	if err != nil {
		return nil, err
	}
	routines, err := t.routinesOf(goal.ID)
	if err != nil {
		return nil, err
	}
	log, err := t.log()
	if err != nil {
		return nil, err
	}
	for i := range routines {
		routines[i].CertifiedToday = log.Has(routines[i].ID, today)
	}
	return routines, nil
}

// check resolves routineID within the current goal and decides whether a
// certification at now would be written. A nil Result means it would.
func (t *Tracker) check(routineID string, now time.Time) (models.Routine, *Result, error) {
	today := utils.DateOnly(now)
	goal, err := t.currentGoal(today)
	if err != nil {
		return models.Routine{}, nil, err
	}
	routines, err := t.routinesOf(goal.ID)
	if err != nil {
		return models.Routine{}, nil, err
	}
	idx := slices.IndexFunc(routines, func(r models.Routine) bool { return r.ID == routineID })
	if idx < 0 {
		return models.Routine{}, nil, fmt.Errorf("%w: %s", ErrRoutineNotFound, routineID)
	}
	routine := routines[idx]

	log, err := t.log()
	if err != nil {
		return routine, nil, err
	}
	if existing, ok := log.Get(routine.ID, today); ok {
		return routine, &Result{Status: StatusAlreadyCertified, Certification: existing}, nil
	}

	settings, err := t.store.GetSettings()
	if err != nil {
		return routine, nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if settings.StrictWindow && !window.IsEligible(routine, now) {
		return routine, &Result{Status: StatusOutsideWindow}, nil
	}
	return routine, nil, nil
}

// Certify records that routineID was done today. A repeat on the same day and
// an attempt outside the window in strict mode are reported through the
// status and write nothing.
func (t *Tracker) Certify(routineID string, proof Proof) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, err := t.now()
	if err != nil {
		return Result{}, err
	}
	routine, early, err := t.check(routineID, now)
	if err != nil {
		return Result{}, err
	}
	if early != nil {
		logger.Debug("Certification not written", "routine", routine.Name, "status", early.Status)
		return *early, nil
	}

	userID, err := t.identity.UserID()
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	cert := models.Certification{
		RoutineID: routine.ID,
		Date:      utils.DateOnly(now),
		Timestamp: now,
	}
	story := models.Story{
		ID:        uuid.NewString(),
		RoutineID: routine.ID,
		OwnerID:   userID,
		OwnerName: identity.DisplayName(userID),
		MediaRef:  proof.MediaRef,
		MediaType: proof.MediaType,
		Caption:   proof.Caption,
		IsLate:    !window.IsEligible(routine, now),
		CreatedAt: now,
		ExpiresAt: now.Add(constants.StoryTTL),
	}
	if err := t.store.CommitCertification(cert, story); err != nil {
		if !errors.Is(err, storage.ErrAlreadyCommitted) {
			return Result{}, fmt.Errorf("failed to commit certification: %w", err)
		}
		// Another process sharing the store got there first.
		result := Result{Status: StatusAlreadyCertified, Certification: cert}
		if log, err := t.log(); err == nil {
			if existing, ok := log.Get(cert.RoutineID, cert.Date); ok {
				result.Certification = existing
			}
		}
		logger.Debug("Certification not written", "routine", routine.Name, "status", result.Status)
		return result, nil
	}

	logger.Info("Routine certified", "routine", routine.Name, "date", cert.Date, "late", story.IsLate)
	return Result{Status: StatusAccepted, Certification: cert, Story: story}, nil
}

// CertifyUpload uploads capture and certifies routineID with it. Nothing is
// uploaded when the certification would not be written, and nothing is
// written when the upload fails or ctx is done before it completes.
func (t *Tracker) CertifyUpload(ctx context.Context, routineID string, capture media.Capture, caption string) (Result, error) {
	if t.uploader == nil {
		return Result{}, ErrNoUploader
	}

	t.mu.RLock()
	now, err := t.now()
	var early *Result
	if err == nil {
		_, early, err = t.check(routineID, now)
	}
	t.mu.RUnlock()
	if err != nil {
		return Result{}, err
	}
	if early != nil {
		return *early, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	up, err := t.uploader.Upload(ctx, capture)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("%w: %w", media.ErrUploadFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return t.Certify(routineID, Proof{MediaRef: up.MediaRef, MediaType: up.MediaType, Caption: caption})
}

// Streak is the current streak of routineID as of today.
func (t *Tracker) Streak(routineID string) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return 0, err
	}
	log, err := t.log()
	if err != nil {
		return 0, err
	}
	return streak.ForRoutine(log, routineID, utils.DateOnly(now)), nil
}

// BestStreak is the longest run routineID has ever had.
func (t *Tracker) BestStreak(routineID string) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	log, err := t.log()
	if err != nil {
		return 0, err
	}
	return streak.Longest(log, routineID), nil
}

// GoalStreak is the best current streak among the current goal's routines.
func (t *Tracker) GoalStreak() (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return 0, err
	}
	today := utils.DateOnly(now)
	goal, err := t.currentGoal(today)
	if err != nil {
		return 0, err
	}
	routines, err := t.routinesOf(goal.ID)
	if err != nil {
		return 0, err
	}
	log, err := t.log()
	if err != nil {
		return 0, err
	}
	return streak.ForGoal(log, routineIDs(routines), today), nil
}

// RoutineStatus is one line of the today view.
type RoutineStatus struct {
	Routine  models.Routine `json:"routine"`
	Eligible bool           `json:"eligible"`
	Window   string         `json:"window"`
	Streak   int            `json:"streak"`
}

// Today lists the current goal's routines scheduled on today's weekday.
func (t *Tracker) Today() ([]RoutineStatus, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return nil, err
	}
	today := utils.DateOnly(now)
	goal, err := t.currentGoal(today)
	if err != nil {
		return nil, err
	}
	routines, err := t.routinesOf(goal.ID)
	if err != nil {
		return nil, err
	}
	log, err := t.log()
	if err != nil {
		return nil, err
	}

	var out []RoutineStatus
	for _, r := range routines {
		if !r.RunsOn(now.Weekday()) {
			continue
		}
		r.CertifiedToday = log.Has(r.ID, today)
		out = append(out, RoutineStatus{
			Routine:  r,
			Eligible: window.IsEligible(r, now),
			Window:   window.Label(r.Schedule),
			Streak:   streak.ForRoutine(log, r.ID, today),
		})
	}
	return out, nil
}

// OpeningNow lists uncertified routines whose window opens in the current
// minute.
func (t *Tracker) OpeningNow() ([]models.Routine, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return nil, err
	}
	today := utils.DateOnly(now)
	goal, err := t.currentGoal(today)
	if errors.Is(err, ErrNoActiveGoal) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	routines, err := t.routinesOf(goal.ID)
	if err != nil {
		return nil, err
	}
	log, err := t.log()
	if err != nil {
		return nil, err
	}

	var out []models.Routine
	for _, r := range routines {
		if window.Opens(r, now) && !log.Has(r.ID, today) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Feed returns the stories visible right now, newest first. It is empty
// until the local user has certified something today.
func (t *Tracker) Feed() (iter.Seq[models.Story], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return nil, err
	}
	stories, err := t.store.LoadStories()
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	log, err := t.log()
	if err != nil {
		return nil, err
	}
	return feed.Visible(stories, now, log.HasAnyOn(utils.DateOnly(now))), nil
}

// Records lists archived goal outcomes, most recently archived first.
func (t *Tracker) Records() ([]models.Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records, err := t.store.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	slices.SortStableFunc(records, func(a, b models.Record) int {
		return b.ArchivedAt.Compare(a.ArchivedAt)
	})
	return records, nil
}

// CertifiedDays returns the days of month on which any routine of the
// current goal was certified, ascending.
func (t *Tracker) CertifiedDays(year int, month time.Month) ([]int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return nil, err
	}
	goal, err := t.currentGoal(utils.DateOnly(now))
	if err != nil {
		return nil, err
	}
	routines, err := t.routinesOf(goal.ID)
	if err != nil {
		return nil, err
	}
	log, err := t.log()
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	var days []int
	for _, date := range log.DistinctDates(routineIDs(routines)) {
		if !strings.HasPrefix(date, prefix) {
			continue
		}
		d, err := utils.ParseDate(date)
		if err != nil {
			return nil, err
		}
		days = append(days, d.Day())
	}
	return days, nil
}

// Progress places today within the current goal.
func (t *Tracker) Progress() (lifecycle.Progress, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return lifecycle.Progress{}, err
	}
	today := utils.DateOnly(now)
	goal, err := t.currentGoal(today)
	if err != nil {
		return lifecycle.Progress{}, err
	}
	return lifecycle.ProgressOf(goal, today)
}

// Tick archives every goal that has ended.
func (t *Tracker) Tick() ([]models.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, err := t.now()
	if err != nil {
		return nil, err
	}
	return t.lifecycle.Tick(now)
}

// MaybeReset runs the daily reset if today has not had one.
func (t *Tracker) MaybeReset() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now, err := t.now()
	if err != nil {
		return false, err
	}
	return t.reset.MaybeReset(now)
}

// Settings returns the persisted settings.
func (t *Tracker) Settings() (models.Settings, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.GetSettings()
}

// UpdateSettings applies fn to the persisted settings. The reset marker and
// user id cannot be changed this way.
func (t *Tracker) UpdateSettings(fn func(*models.Settings)) (models.Settings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, err := t.store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	next := current
	fn(&next)
	next.LastResetDate = current.LastResetDate
	next.UserID = current.UserID

	if !utils.ValidateTimezone(next.Timezone) {
		return models.Settings{}, fmt.Errorf("invalid timezone %q", next.Timezone)
	}
	if err := t.store.SaveSettings(next); err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return next, nil
}

// UserID resolves the local user's id, creating it on first use.
func (t *Tracker) UserID() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.identity.UserID()
}

// Validate checks the stored data for states the tracker never writes.
func (t *Tracker) Validate() (validation.ValidationResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now, err := t.now()
	if err != nil {
		return validation.ValidationResult{}, err
	}
	snap, err := validation.LoadSnapshot(t.store)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return validation.CheckStore(snap, utils.DateOnly(now)), nil
}

// Wipe deletes all goals, routines, certifications, stories and records.
func (t *Tracker) Wipe() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Wipe(); err != nil {
		return fmt.Errorf("failed to wipe data: %w", err)
	}
	logger.Warn("All data wiped")
	return nil
}
