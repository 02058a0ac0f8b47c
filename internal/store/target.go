package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mayur-samrutwar/isaac/internal/track"
)

// TargetRecord represents a persisted collision target zone.
type TargetRecord struct {
	ID        string
	Name      string
	X         float64
	Y         float64
	Radius    float64
	CreatedAt time.Time
}

// ToTarget converts the record to the tracking-domain target.
func (t *TargetRecord) ToTarget() track.Target {
	return track.Target{ID: t.ID, X: t.X, Y: t.Y, Radius: t.Radius}
}

// TargetRepository provides CRUD operations for collision targets.
type TargetRepository struct {
	db *sql.DB
}

// Targets returns the target repository for this store.
func (s *Store) Targets() *TargetRepository {
	return &TargetRepository{db: s.db}
}

// Create inserts a new target.
func (r *TargetRepository) Create(t *TargetRecord) error {
	t.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO targets (id, name, x, y, radius, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.X, t.Y, t.Radius, t.CreatedAt,
	)
	return err
}

// GetByID retrieves a target by its ID.
func (r *TargetRepository) GetByID(id string) (*TargetRecord, error) {
	t := &TargetRecord{}

	err := r.db.QueryRow(
		`SELECT id, name, x, y, radius, created_at FROM targets WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Name, &t.X, &t.Y, &t.Radius, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// List retrieves all targets in creation order.
func (r *TargetRepository) List() ([]TargetRecord, error) {
	rows, err := r.db.Query(`SELECT id, name, x, y, radius, created_at FROM targets ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []TargetRecord
	for rows.Next() {
		var t TargetRecord
		if err := rows.Scan(&t.ID, &t.Name, &t.X, &t.Y, &t.Radius, &t.CreatedAt); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

// Update modifies a target's position, radius, and name.
func (r *TargetRepository) Update(t *TargetRecord) error {
	result, err := r.db.Exec(
		`UPDATE targets SET name = ?, x = ?, y = ?, radius = ? WHERE id = ?`,
		t.Name, t.X, t.Y, t.Radius, t.ID,
	)
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

// Delete removes a target.
func (r *TargetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM targets WHERE id = ?`, id)
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
