package repository

import (
	"context"
	"database/sql"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// InvoiceRepo provides operations for tour_invoices. One row per slot,
// written only by the admin finalization flow; re-finalizing a slot
// overwrites the previous row in a single atomic statement.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns a new InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

// Upsert creates or overwrites the invoice row for a slot.
func (r *InvoiceRepo) Upsert(ctx context.Context, inv model.TourInvoice) error {
	const q = `INSERT INTO tour_invoices (slot_id, guide_id, pdf_path, amount_pence, currency, persons)
			   VALUES (?, ?, ?, ?, ?, ?)
			   ON DUPLICATE KEY UPDATE
				   guide_id = VALUES(guide_id),
				   pdf_path = VALUES(pdf_path),
				   amount_pence = VALUES(amount_pence),
				   currency = VALUES(currency),
				   persons = VALUES(persons)`
	_, err := r.db.ExecContext(ctx, q, inv.SlotID, inv.GuideID, inv.PDFPath, inv.AmountPence, inv.Currency, inv.Persons)
	return err
}

// GetBySlot returns the invoice for a slot or ErrInvoiceNotFound.
func (r *InvoiceRepo) GetBySlot(ctx context.Context, slotID uint64) (*model.TourInvoice, error) {
	const q = `SELECT id, slot_id, guide_id, pdf_path, amount_pence, currency, persons, created_at, updated_at
			   FROM tour_invoices WHERE slot_id = ?`
	var inv model.TourInvoice
	err := r.db.QueryRowContext(ctx, q, slotID).Scan(
		&inv.ID, &inv.SlotID, &inv.GuideID, &inv.PDFPath, &inv.AmountPence, &inv.Currency, &inv.Persons,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
