package model

import "time"

// Ticket channel kinds.  A scan counts toward the online bucket only when
// its kind is exactly KindOnline; every other value (paper, scanned or
// anything a future channel introduces) is billed through the VIC path.
const (
	KindPaper   = "paper"
	KindScanned = "scanned"
	KindOnline  = "online"
)

// TicketScan records one ticket group's attendance on a slot.  Scans are
// immutable once created: the scanning endpoint and the online ticketing
// integration insert them and the billing pipeline only ever reads them.
//
// Fields:
//  ID        – primary key identifier.
//  SlotID    – slot the group attended.
//  Code      – ticket reference, unique across all scans.
//  Kind      – sales channel (paper, scanned, online, ...).
//  Persons   – number of people in the group, nil counts as one.
//  ScannedBy – guide user who performed the scan, nil for online imports.
//  CreatedAt – creation timestamp.
type TicketScan struct {
	ID        uint64    // ticket_scans.id
	SlotID    uint64    // ticket_scans.slot_id
	Code      string    // ticket_scans.code
	Kind      string    // ticket_scans.kind
	Persons   *uint32   // ticket_scans.persons (nullable)
	ScannedBy *string   // ticket_scans.scanned_by (nullable)
	CreatedAt time.Time // ticket_scans.created_at
}

// PersonCount returns the group size, applying the one-person default
// for scans recorded without an explicit head count.
func (t TicketScan) PersonCount() int64 {
	if t.Persons == nil {
		return 1
	}
	return int64(*t.Persons)
}
