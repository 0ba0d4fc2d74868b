// Package identity supplies the stable pseudonymous id of the local user.
package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/keyring"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/models"
)

// Provider supplies an opaque, stable user id.
type Provider interface {
	UserID() (string, error)
}

// Static is a fixed id.
type Static string

func (s Static) UserID() (string, error) {
	if s == "" {
		return "", errors.New("empty user id")
	}
	return string(s), nil
}

// SettingsStore is the part of storage.Provider Local needs.
type SettingsStore interface {
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error
}

// Local resolves the id from the store's settings, then the OS keyring, and
// mints a new one when neither has it. The id is written back to both so a
// reinstalled database keeps the same pseudonym.
type Local struct {
	store      SettingsStore
	useKeyring bool
}

func NewLocal(store SettingsStore, useKeyring bool) *Local {
	return &Local{store: store, useKeyring: useKeyring}
}

func (l *Local) UserID() (string, error) {
	settings, err := l.store.GetSettings()
	if err != nil {
		return "", fmt.Errorf("failed to read settings: %w", err)
	}
	if settings.UserID != "" {
		l.mirror(settings.UserID)
		return settings.UserID, nil
	}

	id := ""
	if l.useKeyring {
		if stored, err := keyring.GetUserID(); err == nil {
			id = stored
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Keyring lookup failed", "error", err)
		}
	}
	if id == "" {
		id = uuid.NewString()
		logger.Info("Created user id")
	}

	settings.UserID = id
	if err := l.store.SaveSettings(settings); err != nil {
		return "", fmt.Errorf("failed to save user id: %w", err)
	}
	l.mirror(id)
	return id, nil
}

func (l *Local) mirror(id string) {
	if !l.useKeyring {
		return
	}
	if stored, err := keyring.GetUserID(); err == nil && stored == id {
		return
	}
	if err := keyring.SetUserID(id); err != nil {
		logger.Debug("Could not mirror user id to keyring", "error", err)
	}
}

// DisplayName is the public pseudonym of userID, a fixed prefix and the
// last four characters of the id.
func DisplayName(userID string) string {
	suffix := userID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return constants.PseudonymPrefix + suffix
}
