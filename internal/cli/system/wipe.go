package system

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/flashdo/internal/cli"
)

type WipeCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *WipeCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Delete every goal, routine, certification, story and record?").
			Affirmative("Wipe").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !confirmed {
			ctx.Println("Nothing was deleted.")
			return nil
		}
	}

	if path, err := ctx.Snapshot(); err != nil {
		return fmt.Errorf("backup before wipe failed: %w", err)
	} else if path != "" {
		ctx.Println(cli.MutedStyle.Render("Backup saved to " + path))
	}
	if err := ctx.Tracker.Wipe(); err != nil {
		return err
	}
	ctx.Println(cli.WarnStyle.Render("All data wiped."))
	return nil
}
