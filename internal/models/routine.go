package models

import (
	"slices"
	"time"
)

type ScheduleKind string

const (
	ScheduleExplicit ScheduleKind = "explicit"
	ScheduleLegacy   ScheduleKind = "legacy"
)

type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotEvening   Slot = "evening"
)

// Schedule says when a routine may be certified. Exactly one of Time (explicit
// HH:MM) or Slot (legacy named band) is meaningful, selected by Kind.
type Schedule struct {
	Kind ScheduleKind `json:"kind"`
	Time string       `json:"time,omitempty"` // HH:MM format
	Slot Slot         `json:"slot,omitempty"`
}

func AtTime(hhmm string) Schedule {
	return Schedule{Kind: ScheduleExplicit, Time: hhmm}
}

func InSlot(slot Slot) Schedule {
	return Schedule{Kind: ScheduleLegacy, Slot: slot}
}

func (s Schedule) String() string {
	if s.Kind == ScheduleLegacy {
		return string(s.Slot)
	}
	return s.Time
}

type WeekdayCode string

const (
	Sun WeekdayCode = "sun"
	Mon WeekdayCode = "mon"
	Tue WeekdayCode = "tue"
	Wed WeekdayCode = "wed"
	Thu WeekdayCode = "thu"
	Fri WeekdayCode = "fri"
	Sat WeekdayCode = "sat"
)

// AllWeekdays lists the codes in time.Weekday order (Sunday first).
var AllWeekdays = []WeekdayCode{Sun, Mon, Tue, Wed, Thu, Fri, Sat}

func WeekdayCodeOf(d time.Weekday) WeekdayCode {
	return AllWeekdays[d]
}

// Routine is a recurring sub-goal with a weekly schedule and a daily window.
type Routine struct {
	ID        string        `json:"id"`
	GoalID    string        `json:"goal_id"`
	Name      string        `json:"name"`
	Schedule  Schedule      `json:"schedule"`
	Frequency []WeekdayCode `json:"frequency"`
	// CertifiedToday is a cache of the certification log; never treat it as authoritative.
	CertifiedToday bool      `json:"certified_today"`
	CreatedAt      time.Time `json:"created_at"`
}

// RunsOn reports whether the routine is scheduled on the given weekday.
func (r Routine) RunsOn(d time.Weekday) bool {
	return slices.Contains(r.Frequency, WeekdayCodeOf(d))
}
