package model

import "time"

// Slot lifecycle statuses.  A slot becomes completed once its start time
// plus the completion grace period has elapsed; the further "paid" state
// lives on the payment record, not on the slot.
const (
	SlotStatusPlanned   = "planned"
	SlotStatusScheduled = "scheduled"
	SlotStatusCompleted = "completed"
)

// ScheduleSlot represents one scheduled tour occurrence assignable to a
// single guide.  Slots are created by schedule management and only their
// status and reported participant count are mutated here.
//
// Fields:
//  ID                   – primary key identifier.
//  SlotDate             – calendar date of the tour.
//  SlotTime             – local time of day as "HH:MM:SS", nil when the
//                         slot has no fixed start time (midnight assumed).
//  GuideID              – assigned guide, nil while unassigned.
//  Status               – lifecycle status (planned, scheduled, completed).
//  ParticipantsReported – head count reported by the guide on submission.
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type ScheduleSlot struct {
	ID                   uint64    // schedule_slots.id
	SlotDate             time.Time // schedule_slots.slot_date
	SlotTime             *string   // schedule_slots.slot_time (nullable)
	GuideID              *uint64   // schedule_slots.guide_id (nullable)
	Status               string    // schedule_slots.status
	ParticipantsReported *uint32   // schedule_slots.participants_reported (nullable)
	CreatedAt            time.Time // schedule_slots.created_at
	UpdatedAt            time.Time // schedule_slots.updated_at
}

// StartsAt combines the slot date and optional time of day into an
// absolute instant in the given zone and returns it normalized to UTC.
// A missing or malformed time of day defaults to midnight.  Date-only
// values are never parsed in the ambient local zone.
func (s ScheduleSlot) StartsAt(loc *time.Location) time.Time {
	hour, min, sec := 0, 0, 0
	if s.SlotTime != nil {
		if t, err := time.Parse("15:04:05", *s.SlotTime); err == nil {
			hour, min, sec = t.Hour(), t.Minute(), t.Second()
		} else if t, err := time.Parse("15:04", *s.SlotTime); err == nil {
			hour, min = t.Hour(), t.Minute()
		}
	}
	d := s.SlotDate
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, sec, 0, loc).UTC()
}
