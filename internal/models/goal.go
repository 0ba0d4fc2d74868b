package models

import "time"

// Goal is a time-boxed container for up to three routines.
type Goal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date"` // YYYY-MM-DD format
	EndDate   string    `json:"end_date"`   // YYYY-MM-DD format
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is the immutable outcome of a goal whose date range has elapsed.
type Record struct {
	ID            string    `json:"id"`
	GoalID        string    `json:"goal_id"`
	GoalName      string    `json:"goal_name"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	TotalDays     int       `json:"total_days"`
	CompletedDays int       `json:"completed_days"`
	SuccessRate   int       `json:"success_rate"`
	ArchivedAt    time.Time `json:"archived_at"`
}
