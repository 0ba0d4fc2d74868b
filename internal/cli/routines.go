package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/utils"
)

// ResolveRoutine finds a routine of the current goal by id, by 1-based
// position or by case-insensitive name.
func (c *Context) ResolveRoutine(ref string) (models.Routine, error) {
	routines, err := c.Tracker.Routines()
	if err != nil {
		return models.Routine{}, err
	}

	ref = strings.TrimSpace(ref)
	for _, r := range routines {
		if r.ID == ref {
			return r, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(routines) {
		return routines[n-1], nil
	}
	var matches []models.Routine
	for _, r := range routines {
		if strings.EqualFold(r.Name, ref) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Routine{}, fmt.Errorf("no routine matches %q", ref)
	default:
		return models.Routine{}, fmt.Errorf("%d routines are named %q, use the position or id", len(matches), ref)
	}
}

// ParseSchedule reads either an HH:MM time or a legacy slot name.
func ParseSchedule(s string) (models.Schedule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch models.Slot(s) {
	case models.SlotMorning, models.SlotAfternoon, models.SlotEvening:
		return models.InSlot(models.Slot(s)), nil
	}
	if !utils.ValidateTimeFormat(s) {
		return models.Schedule{}, fmt.Errorf("invalid schedule %q, use HH:MM or morning/afternoon/evening", s)
	}
	return models.AtTime(s), nil
}
