// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the reconciliation worker to distinguish between failure
// scenarios. For example, ErrForbidden indicates that a guide tried to
// read another guide's slot, while ErrDuplicateScan signals that a
// ticket code has already been recorded.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSlotNotFound is returned when a schedule slot lookup matches no row.
var ErrSlotNotFound = errors.New("slot not found")

// ErrGuideNotFound is returned when a guide lookup matches no row.
var ErrGuideNotFound = errors.New("guide not found")

// ErrInvoiceNotFound is returned when no invoice has been finalized for
// the requested slot.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrDuplicateScan is returned when a ticket code is scanned a second
// time. Handlers should translate this into an HTTP 400 response.
var ErrDuplicateScan = errors.New("ticket already scanned")
