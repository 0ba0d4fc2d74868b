package models

import "time"

// Certification is a log entry proving a routine was done on a calendar day.
// At most one exists per (RoutineID, Date).
type Certification struct {
	RoutineID string    `json:"routine_id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Timestamp time.Time `json:"timestamp"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Story is the feed entry emitted together with a certification.
type Story struct {
	ID        string    `json:"id"`
	RoutineID string    `json:"routine_id"`
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	MediaRef  string    `json:"media_ref"`
	MediaType MediaType `json:"media_type"`
	Caption   string    `json:"caption,omitempty"`
	IsLate    bool      `json:"is_late"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the story is no longer visible at now.
func (s Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
