package history

import (
	"fmt"
	"time"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/feed"
)

type FeedCmd struct{}

func (c *FeedCmd) Run(ctx *cli.Context) error {
	stories, err := ctx.Tracker.Feed()
	if err != nil {
		return err
	}
	now, err := ctx.Tracker.Now()
	if err != nil {
		return err
	}

	n := 0
	for s := range stories {
		n++
		line := fmt.Sprintf("%s  %s", cli.TitleStyle.Render(s.OwnerName), s.CreatedAt.In(now.Location()).Format("15:04"))
		if s.IsLate {
			line += cli.WarnStyle.Render(" late")
		}
		ctx.Println(line)
		if s.Caption != "" {
			ctx.Printf("  %s\n", s.Caption)
		}
		if s.MediaRef != "" {
			ctx.Printf("  %s %s\n", s.MediaType, s.MediaRef)
		}
		ctx.Println(cli.MutedStyle.Render("  expires in " + feed.Remaining(s, now).Round(time.Minute).String()))
	}
	if n == 0 {
		ctx.Println(cli.MutedStyle.Render("The feed opens once you certify a routine today."))
	}
	return nil
}
