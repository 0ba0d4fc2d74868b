package models

// Settings holds the persisted, per-store user settings.
type Settings struct {
	Timezone      string `json:"timezone"`
	StrictWindow  bool   `json:"strict_window"`
	LastResetDate string `json:"last_reset_date"` // YYYY-MM-DD format, empty before the first reset
	UserID        string `json:"user_id"`
}
