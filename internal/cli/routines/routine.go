package routines

import (
	"fmt"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/tracker"
	"github.com/julianstephens/flashdo/internal/utils"
	"github.com/julianstephens/flashdo/internal/window"
)

type RoutineAddCmd struct {
	Name string `arg:"" help:"Routine name."`
	At   string `help:"Scheduled time (HH:MM) or morning/afternoon/evening." required:""`
	Days string `help:"Weekdays, e.g. mon,wed,fri or daily." default:"daily"`
}

func (c *RoutineAddCmd) Run(ctx *cli.Context) error {
	schedule, err := cli.ParseSchedule(c.At)
	if err != nil {
		return err
	}
	frequency, err := utils.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	routine, err := ctx.Tracker.AddRoutine(tracker.RoutineInput{
		Name:      c.Name,
		Schedule:  schedule,
		Frequency: frequency,
	})
	if err != nil {
		return err
	}
	ctx.Printf("%s Added %q, window %s on %s\n", cli.Check(true), routine.Name, window.Label(routine.Schedule), utils.FormatWeekdays(routine.Frequency))
	return nil
}

type RoutineListCmd struct{}

func (c *RoutineListCmd) Run(ctx *cli.Context) error {
	routines, err := ctx.Tracker.Routines()
	if err != nil {
		return err
	}
	if len(routines) == 0 {
		ctx.Println(cli.MutedStyle.Render("No routines yet. Add one with 'flashdo routine add'."))
		return nil
	}
	for i, r := range routines {
		ctx.Printf("%d. %s %s\n", i+1, cli.Check(r.CertifiedToday), r.Name)
		ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("   %s on %s  id %s", window.Label(r.Schedule), utils.FormatWeekdays(r.Frequency), r.ID)))
	}
	return nil
}
