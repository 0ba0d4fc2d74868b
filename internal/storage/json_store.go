package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/julianstephens/flashdo/internal/models"
)

// Store is the on-disk document of a JSONStore.
type Store struct {
	Version        int                    `json:"version"`
	Settings       models.Settings        `json:"settings"`
	Goals          []models.Goal          `json:"goals"`
	Routines       []models.Routine       `json:"routines"`
	Certifications []models.Certification `json:"certifications"`
	Records        []models.Record        `json:"records"`
	Stories        []models.Story         `json:"stories"`
}

func (s *Store) clone() *Store {
	return &Store{
		Version:        s.Version,
		Settings:       s.Settings,
		Goals:          slices.Clone(s.Goals),
		Routines:       slices.Clone(s.Routines),
		Certifications: slices.Clone(s.Certifications),
		Records:        slices.Clone(s.Records),
		Stories:        slices.Clone(s.Stories),
	}
}

// JSONStore keeps the whole dataset in one JSON file. Every write rewrites
// the file through a temp file and rename, so each call lands entirely or
// not at all.
type JSONStore struct {
	path  string
	mu    sync.RWMutex
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	next := &Store{
		Version:  1,
		Settings: DefaultSettings(),
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.store = next
	return nil
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	store := &Store{}
	if err := json.Unmarshal(data, store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	s.store = store
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) write(store *Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the document and swaps it in only after
// the copy has been written.
func (s *JSONStore) mutate(fn func(*Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return ErrNotLoaded
	}
	next := s.store.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.store = next
	return nil
}

func (s *JSONStore) read(fn func(*Store)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return ErrNotLoaded
	}
	fn(s.store)
	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	var settings models.Settings
	err := s.read(func(st *Store) { settings = st.Settings })
	return settings, err
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	return s.mutate(func(st *Store) error {
		st.Settings = settings
		return nil
	})
}

func (s *JSONStore) LoadGoals() ([]models.Goal, error) {
	var goals []models.Goal
	err := s.read(func(st *Store) { goals = slices.Clone(st.Goals) })
	return goals, err
}

func (s *JSONStore) SaveGoals(goals []models.Goal) error {
	return s.mutate(func(st *Store) error {
		st.Goals = slices.Clone(goals)
		return nil
	})
}

func (s *JSONStore) LoadRoutines() ([]models.Routine, error) {
	var routines []models.Routine
	err := s.read(func(st *Store) { routines = slices.Clone(st.Routines) })
	return routines, err
}

func (s *JSONStore) SaveRoutines(routines []models.Routine) error {
	return s.mutate(func(st *Store) error {
		st.Routines = slices.Clone(routines)
		return nil
	})
}

func (s *JSONStore) LoadCertifications() ([]models.Certification, error) {
	var certs []models.Certification
	err := s.read(func(st *Store) { certs = slices.Clone(st.Certifications) })
	return certs, err
}

func (s *JSONStore) AppendCertification(cert models.Certification) error {
	return s.mutate(func(st *Store) error {
		if hasCertification(st.Certifications, cert) {
			return nil
		}
		st.Certifications = append(st.Certifications, cert)
		return nil
	})
}

func (s *JSONStore) LoadRecords() ([]models.Record, error) {
	var records []models.Record
	err := s.read(func(st *Store) { records = slices.Clone(st.Records) })
	return records, err
}

func (s *JSONStore) AppendRecord(record models.Record) error {
	return s.mutate(func(st *Store) error {
		st.Records = append(st.Records, record)
		return nil
	})
}

func (s *JSONStore) LoadStories() ([]models.Story, error) {
	var stories []models.Story
	err := s.read(func(st *Store) { stories = slices.Clone(st.Stories) })
	return stories, err
}

func (s *JSONStore) AppendStory(story models.Story) error {
	return s.mutate(func(st *Store) error {
		st.Stories = append(st.Stories, story)
		return nil
	})
}

func (s *JSONStore) CommitCertification(cert models.Certification, story models.Story) error {
	return s.mutate(func(st *Store) error {
		if hasCertification(st.Certifications, cert) {
			return ErrAlreadyCommitted
		}
		st.Certifications = append(st.Certifications, cert)
		st.Stories = append(st.Stories, story)
		for i := range st.Routines {
			if st.Routines[i].ID == cert.RoutineID {
				st.Routines[i].CertifiedToday = true
			}
		}
		return nil
	})
}

func (s *JSONStore) ArchiveGoal(record models.Record) error {
	return s.mutate(func(st *Store) error {
		idx := slices.IndexFunc(st.Goals, func(g models.Goal) bool { return g.ID == record.GoalID })
		if idx < 0 {
			return fmt.Errorf("goal %s: %w", record.GoalID, ErrNotFound)
		}
		st.Records = append(st.Records, record)
		st.Goals = slices.Delete(st.Goals, idx, idx+1)
		st.Routines = slices.DeleteFunc(st.Routines, func(r models.Routine) bool {
			return r.GoalID == record.GoalID
		})
		return nil
	})
}

func (s *JSONStore) ResetCertifiedFlags(today string) error {
	return s.mutate(func(st *Store) error {
		for i := range st.Routines {
			st.Routines[i].CertifiedToday = hasCertification(st.Certifications,
				models.Certification{RoutineID: st.Routines[i].ID, Date: today})
		}
		st.Settings.LastResetDate = today
		return nil
	})
}

func (s *JSONStore) Wipe() error {
	return s.mutate(func(st *Store) error {
		st.Goals = nil
		st.Routines = nil
		st.Certifications = nil
		st.Records = nil
		st.Stories = nil
		st.Settings.LastResetDate = ""
		return nil
	})
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func hasCertification(certs []models.Certification, cert models.Certification) bool {
	return slices.ContainsFunc(certs, func(c models.Certification) bool {
		return c.RoutineID == cert.RoutineID && c.Date == cert.Date
	})
}
