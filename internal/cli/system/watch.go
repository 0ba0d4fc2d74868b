package system

import (
	"cmp"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/scheduler"
)

type WatchCmd struct {
	Schedule string `help:"Cron expression for the poll." default:"* * * * *"`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller, err := startPoller(ctx, c.Schedule)
	if err != nil {
		return err
	}
	ctx.Println("Watching for resets, finished goals and opening windows. Press Ctrl+C to stop.")

	<-sigCtx.Done()
	<-poller.Stop().Done()
	logger.Info("Poller stopped")
	return nil
}

// startPoller runs one catch-up poll and then schedules the rest.
func startPoller(ctx *cli.Context, spec string) (*scheduler.Poller, error) {
	sender, err := ctx.Sender()
	if err != nil {
		return nil, err
	}
	poller := scheduler.New(ctx.Tracker, sender)
	if err := poller.Start(cmp.Or(spec, constants.DefaultPollSpec)); err != nil {
		return nil, err
	}
	if _, err := poller.Poll(); err != nil {
		logger.Warn("Initial poll failed", "error", err)
	}
	return poller, nil
}
