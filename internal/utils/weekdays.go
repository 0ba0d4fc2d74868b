package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/flashdo/internal/models"
)

var weekdayNames = map[string]models.WeekdayCode{
	"sun":       models.Sun,
	"sunday":    models.Sun,
	"mon":       models.Mon,
	"monday":    models.Mon,
	"tue":       models.Tue,
	"tuesday":   models.Tue,
	"wed":       models.Wed,
	"wednesday": models.Wed,
	"thu":       models.Thu,
	"thursday":  models.Thu,
	"fri":       models.Fri,
	"friday":    models.Fri,
	"sat":       models.Sat,
	"saturday":  models.Sat,
}

// ParseWeekdays parses a comma-separated list of weekdays into codes.
// "daily" expands to all seven days; numbers are 0=Sunday .. 6=Saturday.
// Duplicates are dropped and the result is in Sunday-first order.
func ParseWeekdays(s string) ([]models.WeekdayCode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "daily" || s == "everyday" {
		return append([]models.WeekdayCode(nil), models.AllWeekdays...), nil
	}

	seen := make(map[models.WeekdayCode]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if code, ok := weekdayNames[part]; ok {
			seen[code] = true
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		seen[models.AllWeekdays[num]] = true
	}

	var codes []models.WeekdayCode
	for _, code := range models.AllWeekdays {
		if seen[code] {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}
	return codes, nil
}

// FormatWeekdays renders codes as a comma-separated list, or "daily" for all seven.
func FormatWeekdays(codes []models.WeekdayCode) string {
	if len(codes) == len(models.AllWeekdays) {
		return "daily"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
