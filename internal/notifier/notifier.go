// Package notifier delivers routine reminders to the desktop tray app and to
// Telegram.
package notifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/window"
)

// Sender delivers one text notification.
type Sender interface {
	Notify(text string) error
}

// Multi sends to every sender and joins their errors.
type Multi []Sender

func (m Multi) Notify(text string) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var retryDelay = constants.NotifyRetryDelay

// NotifyWithRetry tries s a few times with a growing delay between attempts.
func NotifyWithRetry(s Sender, text string) error {
	var err error
	for attempt := range constants.NotifyMaxRetries {
		if err = s.Notify(text); err == nil {
			return nil
		}
		logger.Debug("Notification attempt failed", "attempt", attempt+1, "error", err)
		if attempt < constants.NotifyMaxRetries-1 {
			time.Sleep(retryDelay * time.Duration(attempt+1))
		}
	}
	return fmt.Errorf("notification failed after %d attempts: %w", constants.NotifyMaxRetries, err)
}

// ReminderText is the message sent when a routine's window opens.
func ReminderText(r models.Routine) string {
	return fmt.Sprintf("Time to certify %q (window %s)", r.Name, window.Label(r.Schedule))
}
