package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/storage/storagetest"
)

func newJSONStore(t *testing.T) storage.Provider {
	t.Helper()
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "flashdo.json"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return s
}

func TestJSONStore_Conformance(t *testing.T) {
	storagetest.Run(t, newJSONStore)
}

func TestJSONStore_InitTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashdo.json")
	if err := storage.NewJSONStore(path).Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := storage.NewJSONStore(path).Init(); err == nil {
		t.Error("second Init() should refuse to overwrite")
	}
}

func TestJSONStore_LoadPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashdo.json")
	s := storage.NewJSONStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := s.SaveGoals([]models.Goal{{ID: "g1", Name: "Run", StartDate: "2024-09-01", EndDate: "2024-09-30"}}); err != nil {
		t.Fatalf("SaveGoals() error = %v", err)
	}

	reopened := storage.NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	goals, err := reopened.LoadGoals()
	if err != nil {
		t.Fatalf("LoadGoals() error = %v", err)
	}
	if len(goals) != 1 || goals[0].Name != "Run" {
		t.Errorf("LoadGoals() = %+v", goals)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestJSONStore_NotLoaded(t *testing.T) {
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := s.Load(); err != storage.ErrNotInitialized {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
	if _, err := s.LoadGoals(); err != storage.ErrNotLoaded {
		t.Errorf("LoadGoals() error = %v, want ErrNotLoaded", err)
	}
}

func TestJSONStore_FailedWriteKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flashdo.json")
	s := storage.NewJSONStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	// A directory squatting on the temp path makes the write fail.
	if err := os.Mkdir(path+".tmp", 0700); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	err := s.CommitCertification(
		models.Certification{RoutineID: "r1", Date: "2024-09-02"},
		models.Story{ID: "s1", RoutineID: "r1"},
	)
	if err == nil {
		t.Fatal("CommitCertification() should fail when the file cannot be written")
	}

	certs, _ := s.LoadCertifications()
	stories, _ := s.LoadStories()
	if len(certs) != 0 || len(stories) != 0 {
		t.Errorf("failed commit leaked state: %d certs, %d stories", len(certs), len(stories))
	}
}
