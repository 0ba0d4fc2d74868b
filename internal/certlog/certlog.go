// Package certlog indexes certifications by routine and calendar date.
//
// The log is the source of truth for streaks, the per-day certified flags,
// goal records and the feed gate. It is append-only; entries leave it only
// through a full data wipe, which discards the whole log.
package certlog

import (
	"slices"

	"github.com/julianstephens/flashdo/internal/models"
)

// Log is an in-memory view over a slice of certifications. It is not safe
// for concurrent use; callers guard it with their own lock.
type Log struct {
	entries []models.Certification
	index   map[string]map[string]int // routineID -> date -> position in entries
}

// New builds a log from persisted certifications. Repeated (routine, date)
// pairs keep the first entry seen.
func New(certs []models.Certification) *Log {
	l := &Log{index: make(map[string]map[string]int)}
	for _, c := range certs {
		l.Add(c)
	}
	return l
}

// Has reports whether routineID has a certification dated date.
func (l *Log) Has(routineID, date string) bool {
	_, ok := l.index[routineID][date]
	return ok
}

// Get returns the certification for (routineID, date), if any.
func (l *Log) Get(routineID, date string) (models.Certification, bool) {
	i, ok := l.index[routineID][date]
	if !ok {
		return models.Certification{}, false
	}
	return l.entries[i], true
}

// Add appends c unless the log already holds an entry for its routine and
// date. It reports whether c was appended.
func (l *Log) Add(c models.Certification) bool {
	dates, ok := l.index[c.RoutineID]
	if !ok {
		dates = make(map[string]int)
		l.index[c.RoutineID] = dates
	}
	if _, dup := dates[c.Date]; dup {
		return false
	}
	dates[c.Date] = len(l.entries)
	l.entries = append(l.entries, c)
	return true
}

// Dates returns every certified date of routineID, newest first.
func (l *Log) Dates(routineID string) []string {
	dates := make([]string, 0, len(l.index[routineID]))
	for d := range l.index[routineID] {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	slices.Reverse(dates)
	return dates
}

// HasAnyOn reports whether any routine was certified on date.
func (l *Log) HasAnyOn(date string) bool {
	for _, dates := range l.index {
		if _, ok := dates[date]; ok {
			return true
		}
	}
	return false
}

// DistinctDates returns the sorted set of dates on which at least one of
// routineIDs was certified.
func (l *Log) DistinctDates(routineIDs []string) []string {
	seen := make(map[string]struct{})
	for _, id := range routineIDs {
		for d := range l.index[id] {
			seen[d] = struct{}{}
		}
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return dates
}

func (l *Log) Len() int {
	return len(l.entries)
}
