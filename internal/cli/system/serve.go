package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/flashdo/internal/api"
	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/logger"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	Addr     string `help:"Listen address." default:"127.0.0.1:8787"`
	Secret   string `help:"API signing key; defaults to the one in the OS keyring." env:"FLASHDO_API_SECRET"`
	Watch    bool   `help:"Also run the minute poller."`
	Schedule string `help:"Cron expression for the poller." default:"* * * * *"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	secret, err := cli.APISecret(c.Secret, true)
	if err != nil {
		return err
	}
	handler, err := api.NewHandler(ctx.Tracker, secret)
	if err != nil {
		return err
	}
	app := api.NewApp(handler)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Watch {
		poller, err := startPoller(ctx, c.Schedule)
		if err != nil {
			return err
		}
		defer func() { <-poller.Stop().Done() }()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(c.Addr) }()
	logger.Info("API listening", "addr", c.Addr)
	ctx.Printf("Serving on http://%s (Ctrl+C to stop)\n", c.Addr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
