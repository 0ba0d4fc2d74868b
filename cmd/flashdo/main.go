package main

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/cli/backups"
	"github.com/julianstephens/flashdo/internal/cli/goals"
	"github.com/julianstephens/flashdo/internal/cli/history"
	"github.com/julianstephens/flashdo/internal/cli/routines"
	"github.com/julianstephens/flashdo/internal/cli/settings"
	"github.com/julianstephens/flashdo/internal/cli/system"
	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/config"
	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/errors"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/keyring"
	"github.com/julianstephens/flashdo/internal/logger"
	"github.com/julianstephens/flashdo/internal/media"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/storage/postgres"
	"github.com/julianstephens/flashdo/internal/storage/sqlite"
	"github.com/julianstephens/flashdo/internal/tracker"
)

var CLI struct {
	Version    kong.VersionFlag
	Config     string        `help:"Database file path (.db or .json) or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use the OS keyring or .pgpass instead." default:"~/.config/flashdo/flashdo.db" env:"FLASHDO_CONFIG"`
	Debug      bool          `help:"Log debug output to stderr." env:"FLASHDO_DEBUG"`
	LogLevel   string        `help:"Log level for the log file (debug, info, warn, error)." env:"FLASHDO_LOG_LEVEL"`
	TimeOffset time.Duration `help:"Shift the clock, e.g. 36h or -90m. For trying out windows and resets." hidden:"" env:"FLASHDO_TIME_OFFSET"`

	Tray           bool   `help:"Send reminders to the tray app." env:"FLASHDO_TRAY"`
	TelegramToken  string `help:"Telegram bot token for reminders." env:"FLASHDO_TELEGRAM_TOKEN"`
	TelegramChatID int64  `help:"Telegram chat that receives reminders." env:"FLASHDO_TELEGRAM_CHAT_ID"`

	Init    system.InitCmd   `cmd:"" help:"Initialize flashdo storage."`
	Onboard goals.OnboardCmd `cmd:"" help:"Set up a goal and its routines interactively."`
	Goal    struct {
		Create goals.GoalCreateCmd `cmd:"" help:"Start a new goal."`
		Show   goals.GoalShowCmd   `cmd:"" help:"Show the current goal." default:"1"`
	} `cmd:"" help:"Manage the current goal."`
	Routine struct {
		Add  routines.RoutineAddCmd  `cmd:"" help:"Add a routine to the current goal."`
		List routines.RoutineListCmd `cmd:"" help:"List the current goal's routines." default:"1"`
	} `cmd:"" help:"Manage routines."`
	Today    routines.TodayCmd    `cmd:"" help:"Show today's routines and their windows." default:"1"`
	Certify  routines.CertifyCmd  `cmd:"" help:"Certify a routine for today."`
	Streak   routines.StreakCmd   `cmd:"" help:"Show the current streak."`
	Feed     history.FeedCmd      `cmd:"" help:"Show today's stories."`
	Records  history.RecordsCmd   `cmd:"" help:"Show finished goals."`
	Calendar history.CalendarCmd  `cmd:"" help:"Show certified days of a month."`
	Tick     system.TickCmd       `cmd:"" help:"Run the daily reset and archive finished goals."`
	Reset    system.ResetCmd      `cmd:"" help:"Run the daily reset if it is due."`
	Watch    system.WatchCmd      `cmd:"" help:"Poll every minute and send reminders."`
	Serve    system.ServeCmd      `cmd:"" help:"Serve the HTTP API."`
	Token    system.TokenCmd      `cmd:"" help:"Print an API bearer token."`
	Validate system.ValidateCmd   `cmd:"" help:"Check stored data for conflicts."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Wipe     system.WipeCmd       `cmd:"" help:"Delete all goals, routines and history."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete a stored secret."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check the OS keyring." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Certify small daily routines with a photo, inside their time window"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(config.YAML, constants.DefaultConfigFile),
		kong.Vars{"version": constants.Version},
	)

	store, configDir, err := openStore(CLI.Config)
	errors.Fatal(err)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir, Level: CLI.LogLevel}); err != nil {
		logger.InitWriter(os.Stderr, log.WarnLevel)
		logger.Warn("Logging to stderr", "error", err)
	}

	var clk clock.Clock = clock.NewSystem(nil)
	if CLI.TimeOffset != 0 {
		clk = clock.Offset{Base: clk, Shift: CLI.TimeOffset}
		logger.Warn("Clock shifted", "offset", CLI.TimeOffset)
	}

	appCtx := &cli.Context{
		Store:     store,
		Clock:     clk,
		ConfigDir: configDir,
		Notify: cli.NotifyConfig{
			Tray:           CLI.Tray,
			TelegramToken:  CLI.TelegramToken,
			TelegramChatID: CLI.TelegramChatID,
		},
	}
	appCtx.Tracker = tracker.New(store, clk,
		tracker.WithIdentity(identity.NewLocal(store, keyring.IsAvailable())),
		tracker.WithUploader(media.NewLocalUploader(appCtx.MediaDir(), clk)),
	)

	// init opens the store itself; keyring commands never touch it
	command := ctx.Command()
	if command != "init" && !strings.HasPrefix(command, "keyring") {
		errors.Fatal(store.Load())
	}
	defer store.Close()

	err = ctx.Run(appCtx)
	if err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

// openStore picks the store for config and the directory that holds logs
// and media next to it.
func openStore(config string) (storage.Provider, string, error) {
	fromKeyring := false
	if config == constants.DefaultConfigPath && keyring.IsAvailable() {
		if connStr, err := keyring.GetConnectionString(); err == nil {
			config, fromKeyring = connStr, true
		}
	}

	if postgres.IsConnString(config) || strings.Contains(config, "host=") {
		_, err := postgres.ValidateConnString(config)
		// the keyring is encrypted, so a password stored there is accepted
		if fromKeyring && stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
			err = nil
		}
		if err != nil {
			return nil, "", errors.WithHint(err, "store credentials with 'flashdo keyring set' or in ~/.pgpass")
		}
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		return postgres.New(config), filepath.Join(dir, constants.AppName), nil
	}

	path := kong.ExpandPath(config)
	if strings.HasSuffix(path, ".json") {
		return storage.NewJSONStore(path), filepath.Dir(path), nil
	}
	return sqlite.NewStore(path), filepath.Dir(path), nil
}
