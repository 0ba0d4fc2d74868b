package goals

import (
	"fmt"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/tracker"
)

type GoalCreateCmd struct {
	Name   string `arg:"" help:"Goal name."`
	Period int    `help:"Length in days (7, 21, 30 or 60 are suggested)." default:"21"`
	Start  string `help:"Start date (YYYY-MM-DD), default today."`
	End    string `help:"End date (YYYY-MM-DD); overrides --period."`
	Public bool   `help:"Share stories from this goal in the feed."`
}

func (c *GoalCreateCmd) Run(ctx *cli.Context) error {
	in := tracker.GoalInput{
		Name:       c.Name,
		StartDate:  c.Start,
		EndDate:    c.End,
		PeriodDays: c.Period,
		IsPublic:   c.Public,
	}
	if c.End != "" {
		in.PeriodDays = 0
	}

	goal, err := ctx.Tracker.CreateGoal(in)
	if err != nil {
		return err
	}
	ctx.Printf("%s Created goal %q (%s to %s)\n", cli.Check(true), goal.Name, goal.StartDate, goal.EndDate)
	ctx.Println(cli.MutedStyle.Render("Add up to 3 routines with 'flashdo routine add'."))
	return nil
}

type GoalShowCmd struct{}

func (c *GoalShowCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Tracker.CurrentGoal()
	if err != nil {
		return err
	}
	progress, err := ctx.Tracker.Progress()
	if err != nil {
		return err
	}
	streak, err := ctx.Tracker.GoalStreak()
	if err != nil {
		return err
	}
	routines, err := ctx.Tracker.Routines()
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render(goal.Name))
	ctx.Printf("  %s to %s, day %d of %d\n", goal.StartDate, goal.EndDate, progress.Day, progress.TotalDays)
	ctx.Printf("  Streak: %d\n", streak)
	if goal.IsPublic {
		ctx.Println("  Public")
	}
	if len(routines) == 0 {
		ctx.Println(cli.MutedStyle.Render("  No routines yet."))
		return nil
	}
	ctx.Println()
	for i, r := range routines {
		ctx.Printf("  %d. %s %s %s\n", i+1, cli.Check(r.CertifiedToday), r.Name, cli.MutedStyle.Render(fmt.Sprintf("(%s)", r.Schedule)))
	}
	return nil
}
