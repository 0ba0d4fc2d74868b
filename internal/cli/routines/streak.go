package routines

import (
	"github.com/julianstephens/flashdo/internal/cli"
)

type StreakCmd struct {
	Routine string `arg:"" optional:"" help:"Routine id, position or name; omit for the goal."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	if c.Routine == "" {
		n, err := ctx.Tracker.GoalStreak()
		if err != nil {
			return err
		}
		ctx.Printf("Goal streak: %d\n", n)
		return nil
	}

	routine, err := ctx.ResolveRoutine(c.Routine)
	if err != nil {
		return err
	}
	n, err := ctx.Tracker.Streak(routine.ID)
	if err != nil {
		return err
	}
	best, err := ctx.Tracker.BestStreak(routine.ID)
	if err != nil {
		return err
	}
	ctx.Printf("%s streak: %d (best %d)\n", routine.Name, n, best)
	return nil
}
