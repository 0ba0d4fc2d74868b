package settings

import (
	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone *string `help:"IANA timezone used to decide the calendar day, e.g. Europe/Berlin or Local."`
	Strict   *bool   `help:"Refuse certifications outside the routine's window." negatable:""`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if c.List {
		settings, err := ctx.Tracker.Settings()
		if err != nil {
			return err
		}
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:      %s\n", settings.Timezone)
		ctx.Printf("  Strict Window: %v\n", settings.StrictWindow)
		ctx.Printf("  Last Reset:    %s\n", settingOrDash(settings.LastResetDate))
		if settings.UserID != "" {
			ctx.Printf("  Shown As:      %s\n", identity.DisplayName(settings.UserID))
		}
		return nil
	}

	if c.Timezone == nil && c.Strict == nil {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	_, err := ctx.Tracker.UpdateSettings(func(s *models.Settings) {
		if c.Timezone != nil {
			s.Timezone = *c.Timezone
		}
		if c.Strict != nil {
			s.StrictWindow = *c.Strict
		}
	})
	if err != nil {
		return err
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

func settingOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
