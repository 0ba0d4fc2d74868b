package scheduler

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/tracker"
)

type captureSender struct {
	mu    sync.Mutex
	texts []string
}

func (c *captureSender) Notify(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}

func setupTracker(t *testing.T, now time.Time) (*tracker.Tracker, *clock.Fixed) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "flashdo.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	clk := clock.NewFixed(now)
	return tracker.New(store, clk, tracker.WithIdentity(identity.Static("user-1"))), clk
}

func TestPoll(t *testing.T) {
	start := time.Date(2024, 9, 1, 6, 0, 0, 0, time.UTC)
	tr, clk := setupTracker(t, start)
	if _, err := tr.CreateGoal(tracker.GoalInput{Name: "Sleep", PeriodDays: 7}); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.AddRoutine(tracker.RoutineInput{Name: "Wake", Schedule: models.AtTime("07:00"), Frequency: models.AllWeekdays}); err != nil {
		t.Fatal(err)
	}

	sender := &captureSender{}
	p := New(tr, sender)

	report, err := p.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !report.Reset {
		t.Error("first poll of the day should reset")
	}
	if len(report.Reminded) != 1 || sender.count() != 1 {
		t.Fatalf("reminded %d routines, sent %d, want 1", len(report.Reminded), sender.count())
	}

	// Same minute: no second reminder, no second reset.
	report, err = p.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if report.Reset || len(report.Reminded) != 0 || sender.count() != 1 {
		t.Errorf("second poll in the same minute: %+v, sent %d", report, sender.count())
	}

	clk.Advance(time.Minute)
	if report, _ = p.Poll(); len(report.Reminded) != 0 {
		t.Errorf("reminded after the window opened: %+v", report)
	}

	clk.Set(time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC))
	report, err = p.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !report.Reset || len(report.Archived) != 1 {
		t.Errorf("poll after end date: reset=%v archived=%d", report.Reset, len(report.Archived))
	}
}

type failingTarget struct{ ticks int }

func (f *failingTarget) MaybeReset() (bool, error) { return false, errors.New("db locked") }
func (f *failingTarget) Tick() ([]models.Record, error) {
	f.ticks++
	return nil, nil
}
func (f *failingTarget) OpeningNow() ([]models.Routine, error) { return nil, nil }

func TestPoll_ContinuesAfterError(t *testing.T) {
	target := &failingTarget{}
	p := New(target, nil)

	if _, err := p.Poll(); err == nil {
		t.Error("expected the reset error")
	}
	if target.ticks != 1 {
		t.Errorf("Tick ran %d times, want 1", target.ticks)
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	p := New(&failingTarget{}, nil)
	if err := p.Start("not a schedule"); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestStartStop(t *testing.T) {
	p := New(&failingTarget{}, nil)
	if err := p.Start("@every 1h"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	select {
	case <-p.Stop().Done():
	case <-time.After(time.Second):
		t.Error("Stop() did not finish")
	}
}
