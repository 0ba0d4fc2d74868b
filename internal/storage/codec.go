package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/models"
)

// SettingsPairs flattens settings into the key/value rows kept by the SQL stores.
func SettingsPairs(s models.Settings) [][2]string {
	return [][2]string{
		{constants.SettingTimezone, s.Timezone},
		{constants.SettingStrictWindow, strconv.FormatBool(s.StrictWindow)},
		{constants.SettingLastResetDate, s.LastResetDate},
		{constants.SettingUserID, s.UserID},
	}
}

// ApplySetting sets the field named by key. Unknown keys are ignored so
// newer databases stay readable.
func ApplySetting(s *models.Settings, key, value string) error {
	switch key {
	case constants.SettingTimezone:
		s.Timezone = value
	case constants.SettingStrictWindow:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		s.StrictWindow = b
	case constants.SettingLastResetDate:
		s.LastResetDate = value
	case constants.SettingUserID:
		s.UserID = value
	}
	return nil
}

// EncodeFrequency renders weekday codes as a comma-separated column value.
func EncodeFrequency(codes []models.WeekdayCode) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func DecodeFrequency(s string) []models.WeekdayCode {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	codes := make([]models.WeekdayCode, len(parts))
	for i, p := range parts {
		codes[i] = models.WeekdayCode(p)
	}
	return codes
}
