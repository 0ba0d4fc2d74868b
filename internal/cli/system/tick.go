package system

import (
	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/utils"
)

// TickCmd runs one maintenance pass: the daily reset, then archival of
// goals whose end date has passed.
type TickCmd struct{}

func (c *TickCmd) Run(ctx *cli.Context) error {
	if err := (&ResetCmd{}).Run(ctx); err != nil {
		return err
	}
	records, err := ctx.Tracker.Tick()
	if err != nil {
		return err
	}
	for _, r := range records {
		ctx.Printf("%s Archived %q: %d/%d days, %d%%\n", cli.Check(true), r.GoalName, r.CompletedDays, r.TotalDays, r.SuccessRate)
	}
	if len(records) == 0 {
		ctx.Println(cli.MutedStyle.Render("No goals to archive."))
	}
	return nil
}

type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	done, err := ctx.Tracker.MaybeReset()
	if err != nil {
		return err
	}
	now, err := ctx.Tracker.Now()
	if err != nil {
		return err
	}
	if done {
		ctx.Printf("Daily reset done for %s\n", utils.DateOnly(now))
	} else {
		ctx.Println(cli.MutedStyle.Render("Already reset today."))
	}
	return nil
}
