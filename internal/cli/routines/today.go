package routines

import (
	"fmt"

	"github.com/julianstephens/flashdo/internal/cli"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Tracker.CurrentGoal()
	if err != nil {
		return err
	}
	statuses, err := ctx.Tracker.Today()
	if err != nil {
		return err
	}
	now, err := ctx.Tracker.Now()
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render(fmt.Sprintf("%s  %s", goal.Name, now.Format("Mon Jan 2"))))
	if len(statuses) == 0 {
		ctx.Println(cli.MutedStyle.Render("Nothing scheduled today."))
		return nil
	}

	for _, s := range statuses {
		var state string
		switch {
		case s.Routine.CertifiedToday:
			state = cli.SuccessStyle.Render("done")
		case s.Eligible:
			state = cli.WarnStyle.Render("open now")
		default:
			state = cli.MutedStyle.Render("closed")
		}
		ctx.Printf("%s %-20s %-13s %s  streak %d\n", cli.Check(s.Routine.CertifiedToday), s.Routine.Name, s.Window, state, s.Streak)
	}
	return nil
}
