package postgres

import (
	"github.com/julianstephens/flashdo/internal/models"
	"github.com/julianstephens/flashdo/internal/storage"
)

func (s *Store) LoadGoals() ([]models.Goal, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, name, start_date, end_date, is_public, created_at
		FROM goals ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.StartDate, &g.EndDate, &g.IsPublic, &g.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) SaveGoals(goals []models.Goal) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM goals"); err != nil {
		return err
	}
	for _, g := range goals {
		if _, err := tx.Exec(`
			INSERT INTO goals (id, name, start_date, end_date, is_public, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, g.Name, g.StartDate, g.EndDate, g.IsPublic, g.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) LoadRoutines() ([]models.Routine, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, goal_id, name, schedule_kind, scheduled_time, slot, frequency, certified_today, created_at
		FROM routines ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []models.Routine
	for rows.Next() {
		var r models.Routine
		var kind, slot, frequency string
		if err := rows.Scan(&r.ID, &r.GoalID, &r.Name, &kind, &r.Schedule.Time, &slot,
			&frequency, &r.CertifiedToday, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Schedule.Kind = models.ScheduleKind(kind)
		r.Schedule.Slot = models.Slot(slot)
		r.Frequency = storage.DecodeFrequency(frequency)
		routines = append(routines, r)
	}
	return routines, rows.Err()
}

func (s *Store) SaveRoutines(routines []models.Routine) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM routines"); err != nil {
		return err
	}
	for _, r := range routines {
		if _, err := tx.Exec(`
			INSERT INTO routines (id, goal_id, name, schedule_kind, scheduled_time, slot, frequency, certified_today, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			r.ID, r.GoalID, r.Name, string(r.Schedule.Kind), r.Schedule.Time, string(r.Schedule.Slot),
			storage.EncodeFrequency(r.Frequency), r.CertifiedToday, r.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
