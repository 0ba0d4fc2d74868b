package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/flashdo/internal/cli"
	"github.com/julianstephens/flashdo/internal/identity"
	"github.com/julianstephens/flashdo/internal/storage"
	"github.com/julianstephens/flashdo/internal/storage/postgres"
	"github.com/julianstephens/flashdo/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing data before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	removed := false
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		// Don't delete if it's the source
		if c.Source != "" {
			if absDbPath, err := filepath.Abs(dbPath); err == nil {
				dbPath = absDbPath
			}
			if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if path, err := ctx.Snapshot(); err != nil {
				return fmt.Errorf("backup before reset failed: %w", err)
			} else if path != "" {
				ctx.Printf("Backed up existing database to: %s\n", path)
			}
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			removed = true
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	// A remote store has no file to delete.
	if c.Force && !removed {
		if err := ctx.Tracker.Wipe(); err != nil {
			return err
		}
	}
	ctx.Printf("Initialized flashdo storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}

	userID, err := ctx.Tracker.UserID()
	if err != nil {
		return err
	}
	ctx.Printf("You appear in the feed as %s\n", cli.TitleStyle.Render(identity.DisplayName(userID)))
	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, sourcePath string) error {
	var source storage.Provider
	if postgres.IsConnString(sourcePath) {
		if valid, err := postgres.ValidateConnString(sourcePath); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
		source = postgres.New(sourcePath)
	} else {
		source = sqlite.NewStore(sourcePath)
	}

	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	ctx.Println("  Migrating settings...")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.Println("  Migrating goals...")
	goals, err := source.LoadGoals()
	if err != nil {
		return fmt.Errorf("failed to get goals from source: %w", err)
	}
	if err := ctx.Store.SaveGoals(goals); err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}
	routines, err := source.LoadRoutines()
	if err != nil {
		return fmt.Errorf("failed to get routines from source: %w", err)
	}
	if err := ctx.Store.SaveRoutines(routines); err != nil {
		return fmt.Errorf("failed to save routines: %w", err)
	}
	ctx.Printf("    Migrated %d goals and %d routines\n", len(goals), len(routines))

	ctx.Println("  Migrating certifications...")
	certs, err := source.LoadCertifications()
	if err != nil {
		return fmt.Errorf("failed to get certifications from source: %w", err)
	}
	for _, cert := range certs {
		if err := ctx.Store.AppendCertification(cert); err != nil {
			return fmt.Errorf("failed to add certification %s/%s: %w", cert.RoutineID, cert.Date, err)
		}
	}
	ctx.Printf("    Migrated %d certifications\n", len(certs))

	ctx.Println("  Migrating stories...")
	stories, err := source.LoadStories()
	if err != nil {
		return fmt.Errorf("failed to get stories from source: %w", err)
	}
	for _, st := range stories {
		if err := ctx.Store.AppendStory(st); err != nil {
			return fmt.Errorf("failed to add story %s: %w", st.ID, err)
		}
	}
	ctx.Printf("    Migrated %d stories\n", len(stories))

	ctx.Println("  Migrating records...")
	records, err := source.LoadRecords()
	if err != nil {
		return fmt.Errorf("failed to get records from source: %w", err)
	}
	for _, r := range records {
		if err := ctx.Store.AppendRecord(r); err != nil {
			return fmt.Errorf("failed to add record %s: %w", r.ID, err)
		}
	}
	ctx.Printf("    Migrated %d records\n", len(records))

	return nil
}
