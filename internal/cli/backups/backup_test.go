package backups

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/storage/sqlite"
	"github.com/julianstephens/flashdo/internal/tracker"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clk := clock.NewFixed(time.Date(2024, 9, 1, 7, 0, 0, 0, time.UTC))
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:   store,
		Clock:   clk,
		Tracker: tracker.New(store, clk, tracker.WithIdentity(identity.Static("user-1"))),
		Out:     out,
	}
	if _, err := ctx.Tracker.UpdateSettings(func(s *models.Settings) { s.Timezone = "UTC" }); err != nil {
		t.Fatal(err)
	}
	return ctx, out
}

func TestBackupCreateListRestore(t *testing.T) {
	ctx, out := setupTestDB(t)
	if _, err := ctx.Tracker.CreateGoal(tracker.GoalInput{Name: "Read", PeriodDays: 21}); err != nil {
		t.Fatal(err)
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	name := "flashdo-20240901-070000.db"
	if !strings.Contains(out.String(), name) {
		t.Fatalf("unexpected output: %q", out.String())
	}

	if err := ctx.Tracker.Wipe(); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 total") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := (&BackupRestoreCmd{BackupFile: name}).Run(ctx); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}
	goal, err := ctx.Tracker.CurrentGoal()
	if err != nil {
		t.Fatalf("goal not restored: %v", err)
	}
	if goal.Name != "Read" {
		t.Errorf("goal = %q", goal.Name)
	}
}

func TestBackupRestore_Missing(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&BackupRestoreCmd{BackupFile: "flashdo-nope.db"}).Run(ctx); err == nil {
		t.Error("expected error for missing backup")
	}
}

func TestBackup_NotLocal(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "flashdo.json"))
	ctx := &cli.Context{Store: store, Clock: clock.NewFixed(time.Now()), Out: &bytes.Buffer{}}
	if err := (&BackupCreateCmd{}).Run(ctx); !errors.Is(err, errNotLocal) {
		t.Errorf("expected errNotLocal, got %v", err)
	}
}
