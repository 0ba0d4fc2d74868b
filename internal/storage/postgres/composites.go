package postgres

import (
	"fmt"

	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
)

func (s *Store) CommitCertification(cert models.Certification, story models.Story) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inserted, err := insertCertification(tx, cert)
	if err != nil {
		return fmt.Errorf("failed to append certification: %w", err)
	}
	if !inserted {
		return storage.ErrAlreadyCommitted
	}
	if err := insertStory(tx, story); err != nil {
		return fmt.Errorf("failed to append story: %w", err)
	}
	if _, err := tx.Exec("UPDATE routines SET certified_today = TRUE WHERE id = $1", cert.RoutineID); err != nil {
		return fmt.Errorf("failed to set certified flag: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ArchiveGoal(record models.Record) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM goals WHERE id = $1", record.GoalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("goal %s: %w", record.GoalID, storage.ErrNotFound)
	}
	if _, err := tx.Exec("DELETE FROM routines WHERE goal_id = $1", record.GoalID); err != nil {
		return fmt.Errorf("failed to delete routines: %w", err)
	}
	if err := insertRecord(tx, record); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ResetCertifiedFlags(today string) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE routines SET certified_today = EXISTS (
		SELECT 1 FROM certifications c WHERE c.routine_id = routines.id AND c.date = $1)`, today); err != nil {
		return err
	}
	if _, err := tx.Exec(upsertSettingSQL, constants.SettingLastResetDate, today); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Wipe() error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("TRUNCATE goals, routines, certifications, stories, records"); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}
	if _, err := tx.Exec(upsertSettingSQL, constants.SettingLastResetDate, ""); err != nil {
		return err
	}
	return tx.Commit()
}
