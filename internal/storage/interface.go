package storage

import (
	"errors"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotLoaded      = errors.New("storage not loaded")
	ErrNotInitialized = errors.New("storage not initialized, run 'flashdo init' first")
	// ErrAlreadyCommitted is returned by CommitCertification when the routine
	// is already certified for that date.
	ErrAlreadyCommitted = errors.New("certification already committed")
)

// Provider is the persistence collaborator. The Load/Save/Append methods are
// plain collection accessors; the composite writes below them must each be
// applied atomically so that no reader observes half of one.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Goals and routines. Save replaces the whole collection.
	LoadGoals() ([]models.Goal, error)
	SaveGoals([]models.Goal) error
	LoadRoutines() ([]models.Routine, error)
	SaveRoutines([]models.Routine) error

	// Append-only collections
	LoadCertifications() ([]models.Certification, error)
	AppendCertification(models.Certification) error
	LoadRecords() ([]models.Record, error)
	AppendRecord(models.Record) error
	LoadStories() ([]models.Story, error)
	AppendStory(models.Story) error

	// CommitCertification appends cert and story and sets the certified flag
	// of cert's routine. A certification already logged for the same routine
	// and date leaves the store untouched and returns ErrAlreadyCommitted.
	CommitCertification(cert models.Certification, story models.Story) error
	// ArchiveGoal appends record and removes the goal and its routines.
	ArchiveGoal(record models.Record) error
	// ResetCertifiedFlags recomputes every routine's certified flag from the
	// log entries dated today and moves the last reset marker to today.
	ResetCertifiedFlags(today string) error
	// Wipe removes every goal, routine, certification, story and record.
	// Settings other than the reset marker survive.
	Wipe() error

	// Utils
	GetConfigPath() string
}

// DefaultSettings returns the settings written by Init.
func DefaultSettings() models.Settings {
	return models.Settings{
		Timezone:     constants.DefaultTimezone,
		StrictWindow: constants.DefaultStrictWindow,
	}
}
