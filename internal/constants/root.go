package constants

import "time"

const (
	AppName            = "flashdo"
	DefaultKeyringUser = "database-connection"
	KeyringUserIDKey   = "user-id"
	KeyringAPISecret   = "api-signing-key"
	DefaultConfigPath  = "~/.config/flashdo/flashdo.db"
	DefaultConfigFile  = "~/.config/flashdo/config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Certification rules
	CertificationWindow = 60 * time.Minute
	StoryTTL            = 12 * time.Hour
	MaxRoutinesPerGoal  = 3

	// Legacy slot bands, in minutes from midnight
	MorningStartMin   = 5 * 60
	AfternoonStartMin = 12 * 60
	EveningStartMin   = 18 * 60
	MinutesPerDay     = 24 * 60

	// Media rules
	MaxMediaBytes = 50 * 1024 * 1024
	MediaDirName  = "media"

	// Polling
	DefaultPollSpec = "* * * * *"

	// API
	DefaultAPIAddr  = "127.0.0.1:8787"
	DefaultTokenTTL = 30 * 24 * time.Hour

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "flashdo-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.flashdo"

	PseudonymPrefix = "Challenger #"
)

// GoalPeriods are the goal lengths offered at onboarding, in days.
var GoalPeriods = []int{7, 21, 30, 60}
