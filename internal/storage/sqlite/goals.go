package sqlite

import (
	"database/sql"

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
		var isPublic int
		var createdAt string
		if err := rows.Scan(&g.ID, &g.Name, &g.StartDate, &g.EndDate, &isPublic, &createdAt); err != nil {
			return nil, err
		}
		g.IsPublic = isPublic == 1
		if g.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
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
			VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.StartDate, g.EndDate, boolToInt(g.IsPublic), formatTime(g.CreatedAt)); err != nil {
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
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}
	return routines, rows.Err()
}

func scanRoutine(rows *sql.Rows) (models.Routine, error) {
	var r models.Routine
	var kind, slot, frequency, createdAt string
	var certified int
	if err := rows.Scan(&r.ID, &r.GoalID, &r.Name, &kind, &r.Schedule.Time, &slot, &frequency, &certified, &createdAt); err != nil {
		return models.Routine{}, err
	}
	r.Schedule.Kind = models.ScheduleKind(kind)
	r.Schedule.Slot = models.Slot(slot)
	r.Frequency = storage.DecodeFrequency(frequency)
	r.CertifiedToday = certified == 1

	var err error
	if r.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Routine{}, err
	}
	return r, nil
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
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.GoalID, r.Name, string(r.Schedule.Kind), r.Schedule.Time, string(r.Schedule.Slot),
			storage.EncodeFrequency(r.Frequency), boolToInt(r.CertifiedToday), formatTime(r.CreatedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
