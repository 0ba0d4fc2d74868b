package history

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage/sqlite"
	"github.com/julianstephens/flashdo/internal/tracker"
)

type fixture struct {
	ctx     *cli.Context
	clk     *clock.Fixed
	out     *bytes.Buffer
	routine models.Routine
}

// setupTestDB starts on 2024-09-01 07:00 UTC with a 7 day goal and one daily
// routine at 07:00.
func setupTestDB(t *testing.T) *fixture {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	clk := clock.NewFixed(time.Date(2024, 9, 1, 7, 0, 0, 0, time.UTC))
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:   store,
		Clock:   clk,
		Tracker: tracker.New(store, clk, tracker.WithIdentity(identity.Static("user-1234"))),
		Out:     out,
	}
	if _, err := ctx.Tracker.CreateGoal(tracker.GoalInput{Name: "Week", PeriodDays: 7}); err != nil {
		t.Fatal(err)
	}
	routine, err := ctx.Tracker.AddRoutine(tracker.RoutineInput{
		Name:      "Run",
		Schedule:  models.AtTime("07:00"),
		Frequency: models.AllWeekdays,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{ctx: ctx, clk: clk, out: out, routine: routine}
}

func (f *fixture) certify(t *testing.T) {
	t.Helper()
	res, err := f.ctx.Tracker.Certify(f.routine.ID, tracker.Proof{Caption: "done"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Accepted() {
		t.Fatalf("certification not accepted: %s", res.Status)
	}
}

func TestFeedCmd_Gated(t *testing.T) {
	f := setupTestDB(t)

	now := f.clk.Now()
	err := f.ctx.Store.AppendStory(models.Story{
		ID:        "other",
		RoutineID: "elsewhere",
		OwnerID:   "someone-abcd",
		OwnerName: "Challenger #abcd",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(10 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := (&FeedCmd{}).Run(f.ctx); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if strings.Contains(f.out.String(), "Challenger #abcd") {
		t.Errorf("feed shown before certifying: %q", f.out.String())
	}

	f.certify(t)
	f.out.Reset()
	if err := (&FeedCmd{}).Run(f.ctx); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	got := f.out.String()
	for _, want := range []string{"Challenger #abcd", "Challenger #1234", "done", "expires in 10h0m0s", "expires in 12h0m0s"} {
		if !strings.Contains(got, want) {
			t.Errorf("feed missing %q: %q", want, got)
		}
	}
	if strings.Index(got, "Challenger #1234") > strings.Index(got, "Challenger #abcd") {
		t.Errorf("expected newest story first: %q", got)
	}
}

func TestRecordsCmd(t *testing.T) {
	f := setupTestDB(t)

	if err := (&RecordsCmd{}).Run(f.ctx); err != nil {
		t.Fatalf("records failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "No finished goals") {
		t.Errorf("unexpected output: %q", f.out.String())
	}

	f.certify(t)
	f.clk.Set(time.Date(2024, 9, 9, 7, 0, 0, 0, time.UTC))
	if _, err := f.ctx.Tracker.Tick(); err != nil {
		t.Fatal(err)
	}

	f.out.Reset()
	if err := (&RecordsCmd{}).Run(f.ctx); err != nil {
		t.Fatalf("records failed: %v", err)
	}
	got := f.out.String()
	if !strings.Contains(got, "Week") || !strings.Contains(got, "1/8 days") || !strings.Contains(got, "13%") {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestCalendarCmd(t *testing.T) {
	f := setupTestDB(t)
	f.certify(t)
	f.clk.Advance(48 * time.Hour)
	f.certify(t)

	if err := (&CalendarCmd{}).Run(f.ctx); err != nil {
		t.Fatalf("calendar failed: %v", err)
	}
	got := f.out.String()
	if !strings.Contains(got, "September 2024") || !strings.Contains(got, "2 day(s) certified") {
		t.Errorf("unexpected output: %q", got)
	}

	f.out.Reset()
	if err := (&CalendarCmd{Year: 2024, Month: 8}).Run(f.ctx); err != nil {
		t.Fatalf("calendar failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "0 day(s) certified") {
		t.Errorf("unexpected output: %q", f.out.String())
	}

	if err := (&CalendarCmd{Month: 13}).Run(f.ctx); err == nil {
		t.Error("expected invalid month error")
	}
}

func TestRenderMonth(t *testing.T) {
	// September 2024 starts on a Sunday and has 30 days.
	grid := renderMonth(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), nil)
	lines := strings.Split(strings.TrimRight(grid, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header and 5 weeks, got %d lines: %q", len(lines), grid)
	}
	if lines[1] != " 1  2  3  4  5  6  7" {
		t.Errorf("first week = %q", lines[1])
	}
	if lines[5] != "29 30" {
		t.Errorf("last week = %q", lines[5])
	}

	// August 2024 starts on a Thursday.
	grid = renderMonth(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), nil)
	if first := strings.Split(grid, "\n")[1]; first != strings.Repeat("   ", 4)+" 1  2  3" {
		t.Errorf("first week = %q", first)
	}
}
