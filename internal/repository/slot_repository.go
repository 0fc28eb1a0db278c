package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// SlotRepo provides read and lifecycle operations for schedule_slots.
// Slots are created by schedule management outside this service; here
// they are listed, transitioned to completed and annotated with the
// guide's reported head count.  All dates are stored as DATE columns and
// scanned in UTC.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning several repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, slot_date, slot_time, guide_id, status, participants_reported, created_at, updated_at`

// scanSlot reads one slot row from the given scanner.
func scanSlot(row interface{ Scan(dest ...interface{}) error }) (model.ScheduleSlot, error) {
	var (
		s        model.ScheduleSlot
		slotTime sql.NullString
		guideID  sql.NullInt64
		reported sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.SlotDate, &slotTime, &guideID, &s.Status, &reported, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.ScheduleSlot{}, err
	}
	if slotTime.Valid {
		v := slotTime.String
		s.SlotTime = &v
	}
	if guideID.Valid {
		v := uint64(guideID.Int64)
		s.GuideID = &v
	}
	if reported.Valid {
		v := uint32(reported.Int64)
		s.ParticipantsReported = &v
	}
	return s, nil
}

// GetByID returns a single slot or ErrSlotNotFound.
func (r *SlotRepo) GetByID(ctx context.Context, slotID uint64) (*model.ScheduleSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM schedule_slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, slotID))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListPayable returns every slot with an assigned guide dated on or
// before the given day. The day bounds the query window; the caller
// applies the time-of-day cutoff because the cutoff depends on the
// configured tour zone, not on the database clock.
func (r *SlotRepo) ListPayable(ctx context.Context, today string) ([]model.ScheduleSlot, error) {
	const q = `SELECT ` + slotColumns + `
			   FROM schedule_slots
			   WHERE guide_id IS NOT NULL AND slot_date <= ?`
	rows, err := r.db.QueryContext(ctx, q, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScheduleSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByDate returns assigned, not-yet-completed slots on one calendar
// date. Used by the reminder worker to collect tomorrow's tours.
func (r *SlotRepo) ListByDate(ctx context.Context, date string) ([]model.ScheduleSlot, error) {
	const q = `SELECT ` + slotColumns + `
			   FROM schedule_slots
			   WHERE guide_id IS NOT NULL AND slot_date = ? AND status IN (?, ?)`
	rows, err := r.db.QueryContext(ctx, q, date, model.SlotStatusPlanned, model.SlotStatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScheduleSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByGuide returns all slots assigned to a guide ordered by date and
// time for the guide's tour list.
func (r *SlotRepo) ListByGuide(ctx context.Context, guideID uint64) ([]model.ScheduleSlot, error) {
	const q = `SELECT ` + slotColumns + `
			   FROM schedule_slots
			   WHERE guide_id = ?
			   ORDER BY slot_date ASC, slot_time ASC`
	rows, err := r.db.QueryContext(ctx, q, guideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScheduleSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkCompleted transitions all given slots to completed in one batched
// statement. Passing an empty slice has no effect and returns nil.
func (r *SlotRepo) MarkCompleted(ctx context.Context, slotIDs []uint64) error {
	if len(slotIDs) == 0 {
		return nil
	}
	query := `UPDATE schedule_slots SET status = ?, updated_at = ? WHERE id IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(slotIDs)), ",") + `)`
	args := make([]interface{}, 0, len(slotIDs)+2)
	args = append(args, model.SlotStatusCompleted, time.Now().UTC())
	for _, id := range slotIDs {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SubmitCompletion records the head count a guide reported for their own
// slot and marks it completed. The guide condition is part of the WHERE
// clause so a guide can never submit another guide's tour; when nothing
// matches the slot either does not exist or is not theirs.
func (r *SlotRepo) SubmitCompletion(ctx context.Context, slotID, guideID uint64, participants uint32) error {
	const q = `UPDATE schedule_slots
			   SET status = ?, participants_reported = ?, updated_at = ?
			   WHERE id = ? AND guide_id = ?`
	res, err := r.db.ExecContext(ctx, q, model.SlotStatusCompleted, participants, time.Now().UTC(), slotID, guideID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotNotFound
	}
	return nil
}
