// Package scheduler polls the tracker once a minute: the daily reset, goal
// archival and reminders for windows that have just opened.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/notifier"
)

// Target is the part of the tracker the poller drives.
type Target interface {
	MaybeReset() (bool, error)
	Tick() ([]models.Record, error)
	OpeningNow() ([]models.Routine, error)
}

// Report is what one poll did.
type Report struct {
	Reset    bool
	Archived []models.Record
	Reminded []models.Routine
}

type Poller struct {
	target Target
	sender notifier.Sender
	cron   *cron.Cron

	mu sync.Mutex
	// routines reminded by the previous poll; a window opens for one
	// minute so this is enough to avoid repeats within it
	reminded map[string]bool
}

// New returns a poller. A nil sender disables reminders.
func New(target Target, sender notifier.Sender) *Poller {
	return &Poller{
		target: target,
		sender: sender,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{}),
			cron.SkipIfStillRunning(cronLogger{}),
		), cron.WithLogger(cronLogger{})),
		reminded: make(map[string]bool),
	}
}

// Poll runs one pass. A failing step is logged and does not stop the steps
// after it; the first error is returned.
func (p *Poller) Poll() (Report, error) {
	var report Report
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	reset, err := p.target.MaybeReset()
	if err != nil {
		logger.Error("Daily reset failed", "error", err)
		keep(err)
	}
	report.Reset = reset

	archived, err := p.target.Tick()
	if err != nil {
		logger.Error("Goal tick failed", "error", err)
		keep(err)
	}
	report.Archived = archived

	if p.sender == nil {
		return report, firstErr
	}
	opening, err := p.target.OpeningNow()
	if err != nil {
		logger.Error("Reminder lookup failed", "error", err)
		keep(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	current := make(map[string]bool, len(opening))
	for _, r := range opening {
		current[r.ID] = true
		if p.reminded[r.ID] {
			continue
		}
		if err := notifier.NotifyWithRetry(p.sender, notifier.ReminderText(r)); err != nil {
			logger.Warn("Reminder not delivered", "routine", r.Name, "error", err)
			continue
		}
		report.Reminded = append(report.Reminded, r)
	}
	p.reminded = current
	return report, firstErr
}

// Start schedules Poll on spec (a cron expression) and starts the cron
// goroutine.
func (p *Poller) Start(spec string) error {
	if _, err := p.cron.AddFunc(spec, func() { _, _ = p.Poll() }); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", spec, err)
	}
	p.cron.Start()
	logger.Info("Poller started", "schedule", spec)
	return nil
}

// Stop halts scheduling. The returned context is done once a running poll
// has finished.
func (p *Poller) Stop() context.Context {
	return p.cron.Stop()
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
