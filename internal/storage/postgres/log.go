package postgres

import (
	"database/sql"

	"github.com/julianstephens/flashdo/internal/models"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) LoadCertifications() ([]models.Certification, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT routine_id, date, timestamp FROM certifications ORDER BY timestamp")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []models.Certification
	for rows.Next() {
		var c models.Certification
		if err := rows.Scan(&c.RoutineID, &c.Date, &c.Timestamp); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

func insertCertification(e execer, c models.Certification) (bool, error) {
	res, err := e.Exec(`
		INSERT INTO certifications (routine_id, date, timestamp) VALUES ($1, $2, $3)
		ON CONFLICT (routine_id, date) DO NOTHING`,
		c.RoutineID, c.Date, c.Timestamp)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) AppendCertification(c models.Certification) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := insertCertification(s.db, c)
	return err
}

func (s *Store) LoadRecords() ([]models.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, goal_id, goal_name, start_date, end_date, total_days, completed_days, success_rate, archived_at
		FROM records ORDER BY archived_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.ID, &r.GoalID, &r.GoalName, &r.StartDate, &r.EndDate,
			&r.TotalDays, &r.CompletedDays, &r.SuccessRate, &r.ArchivedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func insertRecord(e execer, r models.Record) error {
	_, err := e.Exec(`
		INSERT INTO records (id, goal_id, goal_name, start_date, end_date, total_days, completed_days, success_rate, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.GoalID, r.GoalName, r.StartDate, r.EndDate, r.TotalDays, r.CompletedDays, r.SuccessRate, r.ArchivedAt)
	return err
}

func (s *Store) AppendRecord(r models.Record) error {
	if err := s.ready(); err != nil {
		return err
	}
	return insertRecord(s.db, r)
}

func (s *Store) LoadStories() ([]models.Story, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, routine_id, owner_id, owner_name, media_ref, media_type, caption, is_late, created_at, expires_at
		FROM stories ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []models.Story
	for rows.Next() {
		var st models.Story
		var mediaType string
		if err := rows.Scan(&st.ID, &st.RoutineID, &st.OwnerID, &st.OwnerName, &st.MediaRef, &mediaType,
			&st.Caption, &st.IsLate, &st.CreatedAt, &st.ExpiresAt); err != nil {
			return nil, err
		}
		st.MediaType = models.MediaType(mediaType)
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

func insertStory(e execer, st models.Story) error {
	_, err := e.Exec(`
		INSERT INTO stories (id, routine_id, owner_id, owner_name, media_ref, media_type, caption, is_late, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		st.ID, st.RoutineID, st.OwnerID, st.OwnerName, st.MediaRef, string(st.MediaType), st.Caption,
		st.IsLate, st.CreatedAt, st.ExpiresAt)
	return err
}

func (s *Store) AppendStory(st models.Story) error {
	if err := s.ready(); err != nil {
		return err
	}
	return insertStory(s.db, st)
}
