// Package streak derives consecutive-day counts from the certification log.
package streak

import (
	"github.com/julianstephens/flashdo/internal/certlog"
	"github.com/julianstephens/flashdo/internal/utils"
)

// ForRoutine counts consecutive certified days for routineID ending on asOf
// (YYYY-MM-DD). The walk starts at asOf itself, so a routine not yet
// certified on asOf has a streak of 0 even if yesterday was certified.
// Dates after asOf are ignored.
func ForRoutine(log *certlog.Log, routineID, asOf string) int {
	n := 0
	for _, d := range log.Dates(routineID) {
		if d > asOf {
			continue
		}
		diff, err := utils.DaysBetween(d, asOf)
		if err != nil || diff != n {
			break
		}
		n++
	}
	return n
}

// ForGoal returns the longest per-routine streak among routineIDs.
func ForGoal(log *certlog.Log, routineIDs []string, asOf string) int {
	best := 0
	for _, id := range routineIDs {
		best = max(best, ForRoutine(log, id, asOf))
	}
	return best
}

// Longest returns the longest run of consecutive certified days ever
// recorded for routineID.
func Longest(log *certlog.Log, routineID string) int {
	dates := log.Dates(routineID)
	best, run := 0, 0
	prev := ""
	for _, d := range dates {
		if prev != "" {
			if diff, err := utils.DaysBetween(d, prev); err == nil && diff == 1 {
				run++
			} else {
				run = 1
			}
		} else {
			run = 1
		}
		best = max(best, run)
		prev = d
	}
	return best
}
