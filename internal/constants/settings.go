package constants

const (
	SettingTimezone      = "timezone"
	SettingStrictWindow  = "strict_window"
	SettingLastResetDate = "last_reset_date"
	SettingUserID        = "user_id"

	DefaultTimezone     = "Local" // Use system local timezone by default
	DefaultStrictWindow = true
)
