package sqlite

import (
	"database/sql"

	"github.com/julianstephens/flashdo/internal/models"
)

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
		var ts string
		if err := rows.Scan(&c.RoutineID, &c.Date, &ts); err != nil {
			return nil, err
		}
		if c.Timestamp, err = parseTime("timestamp", ts); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertCertification reports whether a row was written; an existing
// (routine_id, date) row is left alone.
func insertCertification(e execer, c models.Certification) (bool, error) {
	res, err := e.Exec(
		"INSERT OR IGNORE INTO certifications (routine_id, date, timestamp) VALUES (?, ?, ?)",
		c.RoutineID, c.Date, formatTime(c.Timestamp))
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
		var archivedAt string
		if err := rows.Scan(&r.ID, &r.GoalID, &r.GoalName, &r.StartDate, &r.EndDate,
			&r.TotalDays, &r.CompletedDays, &r.SuccessRate, &archivedAt); err != nil {
			return nil, err
		}
		if r.ArchivedAt, err = parseTime("archived_at", archivedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func insertRecord(e execer, r models.Record) error {
	_, err := e.Exec(`
		INSERT INTO records (id, goal_id, goal_name, start_date, end_date, total_days, completed_days, success_rate, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GoalID, r.GoalName, r.StartDate, r.EndDate, r.TotalDays, r.CompletedDays, r.SuccessRate, formatTime(r.ArchivedAt))
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
		var mediaType, createdAt, expiresAt string
		var isLate int
		if err := rows.Scan(&st.ID, &st.RoutineID, &st.OwnerID, &st.OwnerName, &st.MediaRef, &mediaType,
			&st.Caption, &isLate, &createdAt, &expiresAt); err != nil {
			return nil, err
		}
		st.MediaType = models.MediaType(mediaType)
		st.IsLate = isLate == 1
		if st.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if st.ExpiresAt, err = parseTime("expires_at", expiresAt); err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

func insertStory(e execer, st models.Story) error {
	_, err := e.Exec(`
		INSERT INTO stories (id, routine_id, owner_id, owner_name, media_ref, media_type, caption, is_late, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.RoutineID, st.OwnerID, st.OwnerName, st.MediaRef, string(st.MediaType), st.Caption,
		boolToInt(st.IsLate), formatTime(st.CreatedAt), formatTime(st.ExpiresAt))
	return err
}

func (s *Store) AppendStory(st models.Story) error {
	if err := s.ready(); err != nil {
		return err
	}
	return insertStory(s.db, st)
}
