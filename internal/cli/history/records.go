package history

import (
	"github.com/julianstephens/flashdo/internal/cli"
)

type RecordsCmd struct{}

func (c *RecordsCmd) Run(ctx *cli.Context) error {
	records, err := ctx.Tracker.Records()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ctx.Println(cli.MutedStyle.Render("No finished goals yet."))
		return nil
	}
	for _, r := range records {
		ctx.Printf("%s  %s to %s  %d/%d days  %d%%\n", cli.TitleStyle.Render(r.GoalName), r.StartDate, r.EndDate, r.CompletedDays, r.TotalDays, r.SuccessRate)
	}
	return nil
}
