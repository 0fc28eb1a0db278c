package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// PaymentRepo provides operations for tour_payments. The table carries a
// unique key on slot_id; every mutation below is a single atomic
// insert-or-update keyed on the slot so the reconciliation worker and the
// admin finalization flow can race without lost updates.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// ExistingSlotIDs returns the subset of the given slots that already have
// a payment row, regardless of status.
func (r *PaymentRepo) ExistingSlotIDs(ctx context.Context, slotIDs []uint64) (map[uint64]bool, error) {
	if len(slotIDs) == 0 {
		return map[uint64]bool{}, nil
	}
	query := `SELECT slot_id FROM tour_payments WHERE slot_id IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(slotIDs)), ",") + `)`
	args := make([]interface{}, 0, len(slotIDs))
	for _, id := range slotIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	existing := make(map[uint64]bool)
	for rows.Next() {
		var slotID uint64
		if err := rows.Scan(&slotID); err != nil {
			return nil, err
		}
		existing[slotID] = true
	}
	return existing, rows.Err()
}

// InsertPendingBatch inserts pending payment rows for slots that have no
// payment yet, in one statement. `ON DUPLICATE KEY UPDATE slot_id =
// slot_id` turns a conflict into a no-op: a concurrently finalized (paid)
// row is never overwritten and a pending row is never re-created, which
// is what keeps the worker tick idempotent under races.
func (r *PaymentRepo) InsertPendingBatch(ctx context.Context, payments []model.TourPayment) error {
	if len(payments) == 0 {
		return nil
	}
	query := `INSERT INTO tour_payments (slot_id, guide_id, status, amount_pence, currency) VALUES `
	args := make([]interface{}, 0, len(payments)*5)
	for i, p := range payments {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, p.SlotID, p.GuideID, model.PaymentStatusPending, p.AmountPence, p.Currency)
	}
	query += ` ON DUPLICATE KEY UPDATE slot_id = slot_id`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// UpsertPaid writes the authoritative paid payment for a slot. The
// insert-or-update is keyed on slot_id, so it either creates the row or
// promotes the worker's pending one, overwriting the amount either way.
func (r *PaymentRepo) UpsertPaid(ctx context.Context, p model.TourPayment) error {
	const q = `INSERT INTO tour_payments (slot_id, guide_id, status, amount_pence, currency)
			   VALUES (?, ?, ?, ?, ?)
			   ON DUPLICATE KEY UPDATE
				   guide_id = VALUES(guide_id),
				   status = VALUES(status),
				   amount_pence = VALUES(amount_pence),
				   currency = VALUES(currency)`
	_, err := r.db.ExecContext(ctx, q, p.SlotID, p.GuideID, model.PaymentStatusPaid, p.AmountPence, p.Currency)
	return err
}

// GetBySlot returns the payment row for a slot, or nil when none exists.
func (r *PaymentRepo) GetBySlot(ctx context.Context, slotID uint64) (*model.TourPayment, error) {
	const q = `SELECT id, slot_id, guide_id, status, amount_pence, currency, created_at, updated_at
			   FROM tour_payments WHERE slot_id = ?`
	var p model.TourPayment
	err := r.db.QueryRowContext(ctx, q, slotID).Scan(
		&p.ID, &p.SlotID, &p.GuideID, &p.Status, &p.AmountPence, &p.Currency, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByGuide returns a guide's payments newest first.
func (r *PaymentRepo) ListByGuide(ctx context.Context, guideID uint64) ([]model.TourPayment, error) {
	const q = `SELECT id, slot_id, guide_id, status, amount_pence, currency, created_at, updated_at
			   FROM tour_payments WHERE guide_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, guideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TourPayment
	for rows.Next() {
		var p model.TourPayment
		if err := rows.Scan(&p.ID, &p.SlotID, &p.GuideID, &p.Status, &p.AmountPence, &p.Currency, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
