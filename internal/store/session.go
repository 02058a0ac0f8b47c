package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session represents a recorded capture session in the catalog.
type Session struct {
	ID            string
	Action        string
	StartedAt     time.Time
	DurationSec   float64
	FrameCount    int
	FPS           float64
	SchemaVersion string
	BinPath       string
	MetaPath      string
	CreatedAt     time.Time
}

// SessionRepository provides CRUD operations for recorded sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session record into the catalog.
func (r *SessionRepository) Create(s *Session) error {
	s.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, action, started_at, duration_sec, frame_count, fps, schema_version, bin_path, meta_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Action, s.StartedAt, s.DurationSec, s.FrameCount, s.FPS, s.SchemaVersion, s.BinPath, s.MetaPath, s.CreatedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s := &Session{}

	err := r.db.QueryRow(
		`SELECT id, action, started_at, duration_sec, frame_count, fps, schema_version, bin_path, meta_path, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.Action, &s.StartedAt, &s.DurationSec, &s.FrameCount, &s.FPS, &s.SchemaVersion, &s.BinPath, &s.MetaPath, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s, nil
}

// List retrieves all sessions, most recent first.
func (r *SessionRepository) List() ([]Session, error) {
	rows, err := r.db.Query(
		`SELECT id, action, started_at, duration_sec, frame_count, fps, schema_version, bin_path, meta_path, created_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Action, &s.StartedAt, &s.DurationSec, &s.FrameCount, &s.FPS, &s.SchemaVersion, &s.BinPath, &s.MetaPath, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session from the catalog.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
