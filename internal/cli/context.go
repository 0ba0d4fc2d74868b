package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/flashdo/internal/backup"
	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/keyring"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/notifier"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/storage/sqlite"
	"github.com/julianstephens/flashdo/internal/tracker"
)

// NotifyConfig selects the reminder sinks.
type NotifyConfig struct {
	Tray           bool
	TelegramToken  string
	TelegramChatID int64
}

type Context struct {
	Store     storage.Provider
	Tracker   *tracker.Tracker
	Clock     clock.Clock
	ConfigDir string
	Notify    NotifyConfig
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Print(args ...any) {
	fmt.Fprint(c.out(), args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// MediaDir is where the local uploader keeps proof files.
func (c *Context) MediaDir() string {
	return filepath.Join(c.ConfigDir, constants.MediaDirName)
}

// Sender builds the configured reminder sinks. It returns nil when none is
// configured.
func (c *Context) Sender() (notifier.Sender, error) {
	var senders notifier.Multi
	if c.Notify.Tray {
		senders = append(senders, notifier.NewTray())
	}
	if c.Notify.TelegramToken != "" {
		tg, err := notifier.NewTelegram(c.Notify.TelegramToken, c.Notify.TelegramChatID)
		if err != nil {
			return nil, err
		}
		senders = append(senders, tg)
	}
	if len(senders) == 0 {
		return nil, nil
	}
	return senders, nil
}

// APISecret returns explicit when set, otherwise the signing key stored in
// the OS keyring. With create set, a missing key is generated and stored.
func APISecret(explicit string, create bool) ([]byte, error) {
	if explicit != "" {
		return []byte(explicit), nil
	}

	secret, err := keyring.GetAPISecret()
	if err == nil {
		return []byte(secret), nil
	}
	if !errors.Is(err, keyring.ErrNotFound) || !create {
		return nil, fmt.Errorf("no API signing key available: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	secret = hex.EncodeToString(buf)
	if err := keyring.SetAPISecret(secret); err != nil {
		return nil, fmt.Errorf("failed to store signing key: %w", err)
	}
	logger.Info("Generated API signing key")
	return []byte(secret), nil
}

// Backups returns the snapshot manager for a local SQLite store. Other
// stores are not backed up.
func (c *Context) Backups() (*backup.Manager, bool) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, false
	}
	return backup.NewManager(c.Store.GetConfigPath()), true
}

// Snapshot backs up a local SQLite store before a destructive command. It
// returns "" when there is nothing to back up.
func (c *Context) Snapshot() (string, error) {
	mgr, ok := c.Backups()
	if !ok {
		return "", nil
	}
	path, err := mgr.Create(c.Clock.Now())
	if errors.Is(err, backup.ErrNoDatabase) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
