package window

import (
	"testing"
	"time"

	"github.com/julianstephens/flashdo/internal/models"
)

// 2024-09-02 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, 9, day, hour, minute, 0, 0, time.UTC)
}

func daily(s models.Schedule) models.Routine {
	return models.Routine{ID: "r1", Schedule: s, Frequency: models.AllWeekdays}
}

func TestIsEligible_ExplicitBoundaries(t *testing.T) {
	tests := []struct {
		name string
		time string
		now  time.Time
		want bool
	}{
		{name: "T-61", time: "09:00", now: at(2, 7, 59), want: false},
		{name: "T-60", time: "09:00", now: at(2, 8, 0), want: true},
		{name: "T", time: "09:00", now: at(2, 9, 0), want: true},
		{name: "T+60", time: "09:00", now: at(2, 10, 0), want: true},
		{name: "T+60 late seconds", time: "09:00", now: at(2, 10, 0).Add(59 * time.Second), want: true},
		{name: "T+61", time: "09:00", now: at(2, 10, 1), want: false},

		{name: "wrap back: T-61", time: "00:30", now: at(1, 23, 29), want: false},
		{name: "wrap back: T-60 previous day", time: "00:30", now: at(1, 23, 30), want: true},
		{name: "wrap back: midnight", time: "00:30", now: at(2, 0, 0), want: true},
		{name: "wrap back: T", time: "00:30", now: at(2, 0, 30), want: true},
		{name: "wrap back: T+60", time: "00:30", now: at(2, 1, 30), want: true},
		{name: "wrap back: T+61", time: "00:30", now: at(2, 1, 31), want: false},

		{name: "wrap forward: T-60", time: "23:30", now: at(2, 22, 30), want: true},
		{name: "wrap forward: 23:59", time: "23:30", now: at(2, 23, 59), want: true},
		{name: "wrap forward: 00:15 next day", time: "23:30", now: at(3, 0, 15), want: true},
		{name: "wrap forward: T+60", time: "23:30", now: at(3, 0, 30), want: true},
		{name: "wrap forward: T+61", time: "23:30", now: at(3, 0, 31), want: false},
		{name: "wrap forward: T-61", time: "23:30", now: at(2, 22, 29), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := daily(models.AtTime(tt.time))
			if got := IsEligible(r, tt.now); got != tt.want {
				t.Errorf("IsEligible(%s, %s) = %v, want %v", tt.time, tt.now.Format("15:04:05"), got, tt.want)
			}
		})
	}
}

func TestIsEligible_LegacySlots(t *testing.T) {
	tests := []struct {
		name string
		slot models.Slot
		now  time.Time
		want bool
	}{
		{name: "morning start", slot: models.SlotMorning, now: at(2, 5, 0), want: true},
		{name: "morning before", slot: models.SlotMorning, now: at(2, 4, 59), want: false},
		{name: "morning end exclusive", slot: models.SlotMorning, now: at(2, 12, 0), want: false},
		{name: "afternoon start", slot: models.SlotAfternoon, now: at(2, 12, 0), want: true},
		{name: "afternoon last minute", slot: models.SlotAfternoon, now: at(2, 17, 59), want: true},
		{name: "afternoon end exclusive", slot: models.SlotAfternoon, now: at(2, 18, 0), want: false},
		{name: "evening start", slot: models.SlotEvening, now: at(2, 18, 0), want: true},
		{name: "evening midnight", slot: models.SlotEvening, now: at(3, 0, 0), want: true},
		{name: "evening early hours", slot: models.SlotEvening, now: at(3, 4, 59), want: true},
		{name: "evening ends at five", slot: models.SlotEvening, now: at(3, 5, 0), want: false},
		{name: "unknown slot", slot: models.Slot("brunch"), now: at(2, 11, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := daily(models.InSlot(tt.slot))
			if got := IsEligible(r, tt.now); got != tt.want {
				t.Errorf("IsEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsEligible_WeekdayGate(t *testing.T) {
	r := models.Routine{
		ID:        "r1",
		Schedule:  models.AtTime("09:00"),
		Frequency: []models.WeekdayCode{models.Mon, models.Wed},
	}
	if !IsEligible(r, at(2, 9, 0)) {
		t.Error("expected Monday to be eligible")
	}
	if IsEligible(r, at(3, 9, 0)) {
		t.Error("expected Tuesday to be ineligible")
	}
	// The weekday is the one of now, so 23:30 Sunday for a 00:30 Monday
	// routine is gated on Sunday.
	early := models.Routine{ID: "r2", Schedule: models.AtTime("00:30"), Frequency: []models.WeekdayCode{models.Mon}}
	if IsEligible(early, at(1, 23, 30)) {
		t.Error("expected Sunday evening to be gated out")
	}
}

func TestIsEligible_InvalidTime(t *testing.T) {
	if IsEligible(daily(models.AtTime("25:00")), at(2, 1, 0)) {
		t.Error("malformed schedule must not be eligible")
	}
}

func TestIsEligible_UsesLocationOfNow(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	r := daily(models.AtTime("09:00"))
	utcNow := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC) // 09:00 in Seoul
	if IsEligible(r, utcNow) {
		t.Error("midnight UTC should be outside a 09:00 window")
	}
	if !IsEligible(r, utcNow.In(seoul)) {
		t.Error("09:00 Seoul should be inside a 09:00 window")
	}
}

func TestOpens(t *testing.T) {
	r := daily(models.AtTime("00:30"))
	if !Opens(r, at(1, 23, 30)) {
		t.Error("expected window to open at 23:30")
	}
	if Opens(r, at(2, 0, 0)) {
		t.Error("midnight is inside the window but not its first minute")
	}
	evening := daily(models.InSlot(models.SlotEvening))
	if !Opens(evening, at(2, 18, 0)) {
		t.Error("expected evening slot to open at 18:00")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		s    models.Schedule
		want string
	}{
		{models.AtTime("09:00"), "08:00-10:00"},
		{models.AtTime("23:30"), "22:30-00:30"},
		{models.AtTime("00:30"), "23:30-01:30"},
		{models.InSlot(models.SlotEvening), "18:00-05:00"},
		{models.AtTime("nope"), "invalid"},
	}
	for _, tt := range tests {
		if got := Label(tt.s); got != tt.want {
			t.Errorf("Label(%v) = %s, want %s", tt.s, got, tt.want)
		}
	}
}
