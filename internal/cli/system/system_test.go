package system

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage/sqlite"
	"github.com/julianstephens/flashdo/internal/tracker"
)

var testStart = time.Date(2024, 9, 1, 7, 0, 0, 0, time.UTC)

// setupTestInitDB returns a context over a store that has not been
// initialized yet.
func setupTestInitDB(t *testing.T) (*cli.Context, string, *clock.Fixed, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	clk := clock.NewFixed(testStart)
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:   store,
		Clock:   clk,
		Tracker: tracker.New(store, clk, tracker.WithIdentity(identity.Static("user-abcd"))),
		Out:     out,
	}
	return ctx, dbPath, clk, out
}

func setupTestDB(t *testing.T) (*cli.Context, *clock.Fixed, *bytes.Buffer) {
	t.Helper()
	ctx, _, clk, out := setupTestInitDB(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	useUTC(t, ctx)
	return ctx, clk, out
}

func useUTC(t *testing.T, ctx *cli.Context) {
	t.Helper()
	if _, err := ctx.Tracker.UpdateSettings(func(s *models.Settings) { s.Timezone = "UTC" }); err != nil {
		t.Fatal(err)
	}
}

func createGoal(t *testing.T, ctx *cli.Context, days int) models.Routine {
	t.Helper()
	if _, err := ctx.Tracker.CreateGoal(tracker.GoalInput{Name: "Focus", PeriodDays: days}); err != nil {
		t.Fatal(err)
	}
	r, err := ctx.Tracker.AddRoutine(tracker.RoutineInput{Name: "Read", Schedule: models.AtTime("07:00"), Frequency: models.AllWeekdays})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, _, out := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	if !strings.Contains(out.String(), "Challenger #abcd") {
		t.Errorf("expected pseudonym in output, got %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _, _ := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	useUTC(t, ctx)
	createGoal(t, ctx, 21)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
	if _, err := ctx.Tracker.CurrentGoal(); err != nil {
		t.Errorf("second init lost data: %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _, _, _ := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	useUTC(t, ctx)
	createGoal(t, ctx, 21)

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}
	if _, err := ctx.Tracker.CurrentGoal(); !errors.Is(err, tracker.ErrNoActiveGoal) {
		t.Errorf("expected no goal after --force, got %v", err)
	}
}

func TestInitCmd_ForceSameSource(t *testing.T) {
	ctx, dbPath, _, _ := setupTestInitDB(t)
	if err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx); err == nil {
		t.Error("expected error when source and destination are the same")
	}
}

func TestInitCmd_MigrateFromSource(t *testing.T) {
	srcCtx, srcPath, _, _ := setupTestInitDB(t)
	if err := srcCtx.Store.Init(); err != nil {
		t.Fatal(err)
	}
	useUTC(t, srcCtx)
	routine := createGoal(t, srcCtx, 21)
	if _, err := srcCtx.Tracker.Certify(routine.ID, tracker.Proof{}); err != nil {
		t.Fatal(err)
	}
	if err := srcCtx.Store.Close(); err != nil {
		t.Fatal(err)
	}

	ctx, _, _, _ := setupTestInitDB(t)
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	goal, err := ctx.Tracker.CurrentGoal()
	if err != nil {
		t.Fatalf("goal not migrated: %v", err)
	}
	if goal.Name != "Focus" {
		t.Errorf("goal name = %q", goal.Name)
	}
	certs, err := ctx.Store.LoadCertifications()
	if err != nil {
		t.Fatal(err)
	}
	if len(certs) != 1 {
		t.Errorf("expected 1 certification, got %d", len(certs))
	}
	stories, err := ctx.Store.LoadStories()
	if err != nil {
		t.Fatal(err)
	}
	if len(stories) != 1 {
		t.Errorf("expected 1 story, got %d", len(stories))
	}
}

func TestResetCmd(t *testing.T) {
	ctx, clk, out := setupTestDB(t)

	if err := (&ResetCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Daily reset done for 2024-09-01") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&ResetCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Already reset today") {
		t.Errorf("unexpected output: %q", out.String())
	}

	clk.Advance(24 * time.Hour)
	out.Reset()
	if err := (&ResetCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2024-09-02") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestTickCmd_ArchivesEndedGoal(t *testing.T) {
	ctx, clk, out := setupTestDB(t)
	routine := createGoal(t, ctx, 7)
	if _, err := ctx.Tracker.Certify(routine.ID, tracker.Proof{}); err != nil {
		t.Fatal(err)
	}

	if err := (&TickCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No goals to archive") {
		t.Errorf("unexpected output: %q", out.String())
	}

	clk.Set(time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC))
	out.Reset()
	if err := (&TickCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `Archived "Focus": 1/8 days, 13%`) {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestTokenCmd(t *testing.T) {
	ctx, _, out := setupTestDB(t)
	secret := strings.Repeat("k", 32)

	if err := (&TokenCmd{TTL: time.Hour, Secret: secret}).Run(ctx); err != nil {
		t.Fatalf("token failed: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return testStart.Add(time.Minute) }))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != "user-abcd" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if !claims.ExpiresAt.Time.Equal(testStart.Add(time.Hour)) {
		t.Errorf("expires at %v", claims.ExpiresAt.Time)
	}
}

func TestValidateCmd(t *testing.T) {
	ctx, _, out := setupTestDB(t)
	createGoal(t, ctx, 21)

	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatalf("validate failed on clean data: %v", err)
	}
	if !strings.Contains(out.String(), "No conflicts detected.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	routines, err := ctx.Store.LoadRoutines()
	if err != nil {
		t.Fatal(err)
	}
	orphan := routines[0]
	orphan.ID = "orphan"
	orphan.GoalID = "missing-goal"
	if err := ctx.Store.SaveRoutines(append(routines, orphan)); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&ValidateCmd{}).Run(ctx); err == nil {
		t.Error("expected error for orphan routine")
	}
	if !strings.Contains(out.String(), "Conflicts detected") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestWipeCmd(t *testing.T) {
	ctx, _, _ := setupTestDB(t)
	createGoal(t, ctx, 21)

	if err := (&WipeCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("wipe failed: %v", err)
	}
	if _, err := ctx.Tracker.CurrentGoal(); !errors.Is(err, tracker.ErrNoActiveGoal) {
		t.Errorf("expected no goal after wipe, got %v", err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Timezone != "UTC" {
		t.Errorf("wipe changed settings: %+v", settings)
	}
}

func TestWatchCmd_InvalidSchedule(t *testing.T) {
	ctx, _, _ := setupTestDB(t)
	if err := (&WatchCmd{Schedule: "every minute please"}).Run(ctx); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestServeCmd_ShortSecret(t *testing.T) {
	ctx, _, _ := setupTestDB(t)
	if err := (&ServeCmd{Addr: "127.0.0.1:0", Secret: "short"}).Run(ctx); err == nil {
		t.Error("expected error for short signing key")
	}
}
