// Package storagetest holds a behavioural test suite shared by every
// storage.Provider implementation.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
)

// Factory returns an initialized, empty provider. It is called once per subtest.
type Factory func(t *testing.T) storage.Provider

var epoch = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

func goal(id string) models.Goal {
	return models.Goal{ID: id, Name: "Goal " + id, StartDate: "2024-09-01", EndDate: "2024-09-30", CreatedAt: epoch}
}

func routine(id, goalID string) models.Routine {
	return models.Routine{
		ID:        id,
		GoalID:    goalID,
		Name:      "Routine " + id,
		Schedule:  models.AtTime("07:30"),
		Frequency: []models.WeekdayCode{models.Mon, models.Wed, models.Fri},
		CreatedAt: epoch,
	}
}

func story(id, routineID string, created time.Time) models.Story {
	return models.Story{
		ID:        id,
		RoutineID: routineID,
		OwnerID:   "user-1234",
		OwnerName: "Challenger #1234",
		MediaRef:  "media/" + id + ".jpg",
		MediaType: models.MediaImage,
		CreatedAt: created,
		ExpiresAt: created.Add(12 * time.Hour),
	}
}

// Run executes the suite against providers built by newProvider.
func Run(t *testing.T, newProvider Factory) {
	t.Run("DefaultSettings", func(t *testing.T) { testDefaultSettings(t, newProvider(t)) })
	t.Run("SettingsRoundTrip", func(t *testing.T) { testSettingsRoundTrip(t, newProvider(t)) })
	t.Run("GoalsAndRoutines", func(t *testing.T) { testGoalsAndRoutines(t, newProvider(t)) })
	t.Run("AppendOnlyCollections", func(t *testing.T) { testAppendOnly(t, newProvider(t)) })
	t.Run("CommitCertification", func(t *testing.T) { testCommitCertification(t, newProvider(t)) })
	t.Run("ArchiveGoal", func(t *testing.T) { testArchiveGoal(t, newProvider(t)) })
	t.Run("ResetCertifiedFlags", func(t *testing.T) { testResetCertifiedFlags(t, newProvider(t)) })
	t.Run("Wipe", func(t *testing.T) { testWipe(t, newProvider(t)) })
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func testDefaultSettings(t *testing.T, p storage.Provider) {
	settings, err := p.GetSettings()
	must(t, err)
	want := storage.DefaultSettings()
	if settings.Timezone != want.Timezone || settings.StrictWindow != want.StrictWindow {
		t.Errorf("GetSettings() = %+v, want defaults %+v", settings, want)
	}
	if settings.LastResetDate != "" {
		t.Errorf("fresh store has reset marker %q", settings.LastResetDate)
	}
}

func testSettingsRoundTrip(t *testing.T, p storage.Provider) {
	in := models.Settings{Timezone: "Asia/Seoul", StrictWindow: false, LastResetDate: "2024-09-02", UserID: "abc"}
	must(t, p.SaveSettings(in))
	out, err := p.GetSettings()
	must(t, err)
	if out != in {
		t.Errorf("GetSettings() = %+v, want %+v", out, in)
	}
}

func testGoalsAndRoutines(t *testing.T, p storage.Provider) {
	must(t, p.SaveGoals([]models.Goal{goal("g1")}))
	legacy := routine("r2", "g1")
	legacy.Schedule = models.InSlot(models.SlotEvening)
	must(t, p.SaveRoutines([]models.Routine{routine("r1", "g1"), legacy}))

	goals, err := p.LoadGoals()
	must(t, err)
	if len(goals) != 1 || goals[0].ID != "g1" || goals[0].EndDate != "2024-09-30" || !goals[0].CreatedAt.Equal(epoch) {
		t.Fatalf("LoadGoals() = %+v", goals)
	}

	routines, err := p.LoadRoutines()
	must(t, err)
	if len(routines) != 2 {
		t.Fatalf("LoadRoutines() returned %d routines, want 2", len(routines))
	}
	byID := map[string]models.Routine{}
	for _, r := range routines {
		byID[r.ID] = r
	}
	if got := byID["r1"]; got.Schedule != models.AtTime("07:30") || len(got.Frequency) != 3 || got.Frequency[1] != models.Wed {
		t.Errorf("explicit routine round trip = %+v", got)
	}
	if got := byID["r2"]; got.Schedule != models.InSlot(models.SlotEvening) {
		t.Errorf("legacy routine schedule = %+v", got.Schedule)
	}

	// Save replaces the whole collection.
	must(t, p.SaveRoutines([]models.Routine{routine("r3", "g1")}))
	routines, err = p.LoadRoutines()
	must(t, err)
	if len(routines) != 1 || routines[0].ID != "r3" {
		t.Errorf("SaveRoutines did not replace: %+v", routines)
	}
}

func testAppendOnly(t *testing.T, p storage.Provider) {
	c := models.Certification{RoutineID: "r1", Date: "2024-09-02", Timestamp: epoch.Add(24 * time.Hour)}
	must(t, p.AppendCertification(c))
	must(t, p.AppendCertification(c))
	certs, err := p.LoadCertifications()
	must(t, err)
	if len(certs) != 1 || !certs[0].Timestamp.Equal(c.Timestamp) {
		t.Errorf("LoadCertifications() = %+v, want one entry", certs)
	}

	s := story("s1", "r1", epoch)
	s.Caption = "morning run"
	s.IsLate = true
	must(t, p.AppendStory(s))
	stories, err := p.LoadStories()
	must(t, err)
	if len(stories) != 1 || stories[0].Caption != "morning run" || !stories[0].IsLate || !stories[0].ExpiresAt.Equal(s.ExpiresAt) {
		t.Errorf("LoadStories() = %+v", stories)
	}

	r := models.Record{ID: "rec1", GoalID: "g1", GoalName: "Goal", StartDate: "2024-09-01", EndDate: "2024-09-30",
		TotalDays: 30, CompletedDays: 26, SuccessRate: 87, ArchivedAt: epoch}
	must(t, p.AppendRecord(r))
	records, err := p.LoadRecords()
	must(t, err)
	if len(records) != 1 || records[0].SuccessRate != 87 || records[0].TotalDays != 30 {
		t.Errorf("LoadRecords() = %+v", records)
	}
}

func testCommitCertification(t *testing.T, p storage.Provider) {
	must(t, p.SaveGoals([]models.Goal{goal("g1")}))
	must(t, p.SaveRoutines([]models.Routine{routine("r1", "g1"), routine("r2", "g1")}))

	c := models.Certification{RoutineID: "r1", Date: "2024-09-02", Timestamp: epoch}
	must(t, p.CommitCertification(c, story("s1", "r1", epoch)))
	// A second commit for the same day writes nothing, story included.
	err := p.CommitCertification(c, story("s2", "r1", epoch.Add(time.Minute)))
	if !errors.Is(err, storage.ErrAlreadyCommitted) {
		t.Errorf("second CommitCertification() error = %v, want ErrAlreadyCommitted", err)
	}

	// The log entry may come from another writer without a story.
	c2 := models.Certification{RoutineID: "r2", Date: "2024-09-02", Timestamp: epoch}
	must(t, p.AppendCertification(c2))
	err = p.CommitCertification(c2, story("s3", "r2", epoch))
	if !errors.Is(err, storage.ErrAlreadyCommitted) {
		t.Errorf("CommitCertification() over a logged entry error = %v, want ErrAlreadyCommitted", err)
	}

	certs, err := p.LoadCertifications()
	must(t, err)
	stories, err := p.LoadStories()
	must(t, err)
	if len(certs) != 2 || len(stories) != 1 || stories[0].ID != "s1" {
		t.Fatalf("got %d certifications and %d stories, want 2 and 1", len(certs), len(stories))
	}

	routines, err := p.LoadRoutines()
	must(t, err)
	for _, r := range routines {
		if want := r.ID == "r1"; r.CertifiedToday != want {
			t.Errorf("routine %s CertifiedToday = %v, want %v", r.ID, r.CertifiedToday, want)
		}
	}
}

func testArchiveGoal(t *testing.T, p storage.Provider) {
	must(t, p.SaveGoals([]models.Goal{goal("g1"), goal("g2")}))
	must(t, p.SaveRoutines([]models.Routine{routine("r1", "g1"), routine("r2", "g2")}))
	must(t, p.AppendCertification(models.Certification{RoutineID: "r1", Date: "2024-09-02", Timestamp: epoch}))

	rec := models.Record{ID: "rec1", GoalID: "g1", GoalName: "Goal g1", StartDate: "2024-09-01", EndDate: "2024-09-30",
		TotalDays: 30, CompletedDays: 1, SuccessRate: 3, ArchivedAt: epoch}
	must(t, p.ArchiveGoal(rec))

	goals, err := p.LoadGoals()
	must(t, err)
	if len(goals) != 1 || goals[0].ID != "g2" {
		t.Errorf("goals after archive = %+v", goals)
	}
	routines, err := p.LoadRoutines()
	must(t, err)
	if len(routines) != 1 || routines[0].ID != "r2" {
		t.Errorf("routines after archive = %+v", routines)
	}
	certs, err := p.LoadCertifications()
	must(t, err)
	if len(certs) != 1 {
		t.Errorf("archival must keep the certification log, got %d entries", len(certs))
	}

	err = p.ArchiveGoal(rec)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second ArchiveGoal() error = %v, want ErrNotFound", err)
	}
	records, err := p.LoadRecords()
	must(t, err)
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func testResetCertifiedFlags(t *testing.T, p storage.Provider) {
	r1 := routine("r1", "g1")
	r1.CertifiedToday = true
	must(t, p.SaveRoutines([]models.Routine{r1, routine("r2", "g1")}))
	must(t, p.AppendCertification(models.Certification{RoutineID: "r1", Date: "2024-09-02", Timestamp: epoch}))
	// r2 was certified on the new day before the reset ran.
	must(t, p.AppendCertification(models.Certification{RoutineID: "r2", Date: "2024-09-03", Timestamp: epoch.Add(24 * time.Hour)}))

	must(t, p.ResetCertifiedFlags("2024-09-03"))

	routines, err := p.LoadRoutines()
	must(t, err)
	for _, r := range routines {
		if want := r.ID == "r2"; r.CertifiedToday != want {
			t.Errorf("routine %s CertifiedToday = %v, want %v", r.ID, r.CertifiedToday, want)
		}
	}
	settings, err := p.GetSettings()
	must(t, err)
	if settings.LastResetDate != "2024-09-03" {
		t.Errorf("LastResetDate = %q, want 2024-09-03", settings.LastResetDate)
	}
	if settings.Timezone == "" {
		t.Error("reset clobbered other settings")
	}
	certs, err := p.LoadCertifications()
	must(t, err)
	if len(certs) != 2 {
		t.Error("reset touched the certification log")
	}
}

func testWipe(t *testing.T, p storage.Provider) {
	must(t, p.SaveSettings(models.Settings{Timezone: "UTC", StrictWindow: true, LastResetDate: "2024-09-02", UserID: "keep"}))
	must(t, p.SaveGoals([]models.Goal{goal("g1")}))
	must(t, p.SaveRoutines([]models.Routine{routine("r1", "g1")}))
	must(t, p.CommitCertification(models.Certification{RoutineID: "r1", Date: "2024-09-02", Timestamp: epoch}, story("s1", "r1", epoch)))
	must(t, p.AppendRecord(models.Record{ID: "rec", GoalID: "old", ArchivedAt: epoch}))

	must(t, p.Wipe())

	goals, _ := p.LoadGoals()
	routines, _ := p.LoadRoutines()
	certs, _ := p.LoadCertifications()
	stories, _ := p.LoadStories()
	records, _ := p.LoadRecords()
	if len(goals)+len(routines)+len(certs)+len(stories)+len(records) != 0 {
		t.Errorf("Wipe left data: %d goals, %d routines, %d certs, %d stories, %d records",
			len(goals), len(routines), len(certs), len(stories), len(records))
	}
	settings, err := p.GetSettings()
	must(t, err)
	if settings.UserID != "keep" || settings.LastResetDate != "" {
		t.Errorf("settings after wipe = %+v", settings)
	}
}
