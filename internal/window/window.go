// Package window decides whether a routine may be certified at a given moment.
//
// Explicit schedules allow certification from one hour before to one hour
// after the scheduled minute, both ends inclusive, wrapping across midnight.
// Legacy slot schedules use fixed bands. Both are gated on the routine's
// weekday frequency. Everything here is a pure function of its arguments.
package window

import (
	"fmt"
	"time"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/utils"
)

// Band is a half-open range of minutes of the day, [Start, End).
type Band struct {
	Start int
	End   int
}

func (b Band) Contains(minute int) bool {
	return minute >= b.Start && minute < b.End
}

var slotBands = map[models.Slot][]Band{
	models.SlotMorning:   {{Start: constants.MorningStartMin, End: constants.AfternoonStartMin}},
	models.SlotAfternoon: {{Start: constants.AfternoonStartMin, End: constants.EveningStartMin}},
	models.SlotEvening: {
		{Start: constants.EveningStartMin, End: constants.MinutesPerDay},
		{Start: 0, End: constants.MorningStartMin},
	},
}

// Bands returns the minute-of-day bands in which s is open. A window that
// crosses midnight comes back as two bands, the evening part first.
func Bands(s models.Schedule) ([]Band, error) {
	switch s.Kind {
	case models.ScheduleExplicit:
		t, err := utils.ParseTimeToMinutes(s.Time)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled time %q: %w", s.Time, err)
		}
		return explicitBands(t), nil
	case models.ScheduleLegacy:
		bands, ok := slotBands[s.Slot]
		if !ok {
			return nil, fmt.Errorf("unknown slot %q", s.Slot)
		}
		return bands, nil
	default:
		return nil, fmt.Errorf("unknown schedule kind %q", s.Kind)
	}
}

func explicitBands(t int) []Band {
	w := int(constants.CertificationWindow.Minutes())
	start, end := t-w, t+w+1 // end is exclusive; T+60 itself is eligible
	switch {
	case start < 0:
		return []Band{
			{Start: start + constants.MinutesPerDay, End: constants.MinutesPerDay},
			{Start: 0, End: end},
		}
	case end > constants.MinutesPerDay:
		return []Band{
			{Start: start, End: constants.MinutesPerDay},
			{Start: 0, End: end - constants.MinutesPerDay},
		}
	default:
		return []Band{{Start: start, End: end}}
	}
}

// IsEligible reports whether r may be certified at now. The weekday and the
// minute of day are read in now's location, so seconds never move an instant
// out of its minute. Malformed schedules are never eligible.
func IsEligible(r models.Routine, now time.Time) bool {
	if !r.RunsOn(now.Weekday()) {
		return false
	}
	bands, err := Bands(r.Schedule)
	if err != nil {
		return false
	}
	m := utils.MinuteOfDay(now)
	for _, b := range bands {
		if b.Contains(m) {
			return true
		}
	}
	return false
}

// OpenMinute returns the minute of day at which s's window opens.
func OpenMinute(s models.Schedule) (int, error) {
	bands, err := Bands(s)
	if err != nil {
		return 0, err
	}
	return bands[0].Start, nil
}

// Opens reports whether now falls on the first minute of r's window on a day
// the routine runs. The poller uses it to send one reminder per window.
func Opens(r models.Routine, now time.Time) bool {
	if !r.RunsOn(now.Weekday()) {
		return false
	}
	open, err := OpenMinute(r.Schedule)
	if err != nil {
		return false
	}
	return utils.MinuteOfDay(now) == open
}

// Label renders the window of s as "HH:MM-HH:MM" (end inclusive).
func Label(s models.Schedule) string {
	bands, err := Bands(s)
	if err != nil {
		return "invalid"
	}
	first, last := bands[0], bands[len(bands)-1]
	end := last.End
	if s.Kind == models.ScheduleExplicit {
		end-- // explicit windows include their last minute
	}
	return utils.FormatMinutes(first.Start) + "-" + utils.FormatMinutes(end)
}
