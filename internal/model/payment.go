package model

import "time"

// Payment statuses.  The reconciliation worker creates rows as pending;
// only the admin finalization flow promotes them to paid.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// DefaultCurrency is the minor-unit currency all tour payments settle in.
const DefaultCurrency = "GBP"

// TourPayment is the payable computed for one slot.  At most one row
// exists per slot, enforced by a unique key on slot_id and by the
// insert-or-update statements in the repository.
//
// Fields:
//  ID          – primary key identifier.
//  SlotID      – slot the payment settles, unique.
//  GuideID     – guide being paid.
//  Status      – pending or paid.
//  AmountPence – net payable in pence.
//  Currency    – ISO currency code.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type TourPayment struct {
	ID          uint64    // tour_payments.id
	SlotID      uint64    // tour_payments.slot_id
	GuideID     uint64    // tour_payments.guide_id
	Status      string    // tour_payments.status
	AmountPence int64     // tour_payments.amount_pence
	Currency    string    // tour_payments.currency
	CreatedAt   time.Time // tour_payments.created_at
	UpdatedAt   time.Time // tour_payments.updated_at
}

// TourInvoice references the rendered invoice artifact for a slot.
// Written only by the admin finalization flow; overwriting an existing
// row is expected, mark-paid is correction friendly.
//
// Fields:
//  ID          – primary key identifier.
//  SlotID      – invoiced slot, unique.
//  GuideID     – guide the invoice is issued for.
//  PDFPath     – artifact location within the invoice store.
//  AmountPence – invoiced amount in pence.
//  Currency    – ISO currency code.
//  Persons     – total attendance at finalization time.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type TourInvoice struct {
	ID          uint64    // tour_invoices.id
	SlotID      uint64    // tour_invoices.slot_id
	GuideID     uint64    // tour_invoices.guide_id
	PDFPath     string    // tour_invoices.pdf_path
	AmountPence int64     // tour_invoices.amount_pence
	Currency    string    // tour_invoices.currency
	Persons     int64     // tour_invoices.persons
	CreatedAt   time.Time // tour_invoices.created_at
	UpdatedAt   time.Time // tour_invoices.updated_at
}
