package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/storage/storagetest"
)

func setupTestStore(t *testing.T) storage.Provider {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, setupTestStore)
}

func TestStore_LoadBeforeInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
	if _, err := store.LoadGoals(); !errors.Is(err, storage.ErrNotLoaded) {
		t.Errorf("LoadGoals() error = %v, want ErrNotLoaded", err)
	}
}

func TestStore_ReopenKeepsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	settings.UserID = "user-42"
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	store.Close()

	// Running init again over an existing database must not reset settings.
	again := NewStore(path)
	if err := again.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer again.Close()
	got, err := again.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if got.UserID != "user-42" || got.Timezone != "UTC" {
		t.Errorf("settings after reopen = %+v", got)
	}
}
