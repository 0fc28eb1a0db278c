package repository

import (
	"context"
	"database/sql"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// AvailabilityRepo stores guide availability, one row per guide and date.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo returns a new AvailabilityRepo bound to the given database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// Upsert creates or updates the availability flag for a guide on a date.
func (r *AvailabilityRepo) Upsert(ctx context.Context, guideID uint64, date string, available bool) error {
	const q = `INSERT INTO availability (guide_id, date, is_available) VALUES (?, ?, ?)
			   ON DUPLICATE KEY UPDATE is_available = VALUES(is_available)`
	_, err := r.db.ExecContext(ctx, q, guideID, date, available)
	return err
}

// ListByGuide returns a guide's availability, optionally bounded to the
// half-open date range [from, to). Empty bounds list everything.
func (r *AvailabilityRepo) ListByGuide(ctx context.Context, guideID uint64, from, to string) ([]model.Availability, error) {
	query := `SELECT id, guide_id, date, is_available, created_at FROM availability WHERE guide_id = ?`
	args := []interface{}{guideID}
	if from != "" && to != "" {
		query += ` AND date >= ? AND date < ?`
		args = append(args, from, to)
	}
	query += ` ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Availability
	for rows.Next() {
		var a model.Availability
		if err := rows.Scan(&a.ID, &a.GuideID, &a.Date, &a.IsAvailable, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
