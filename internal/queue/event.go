// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentCompletedEvent is published after the admin finalization flow
// commits a paid payment. It carries enough information for downstream
// consumers to notify the guide without querying the primary database.
type PaymentCompletedEvent struct {
	SlotID       uint64 `json:"slot_id"`
	GuideID      uint64 `json:"guide_id"`
	GuideUserID  string `json:"guide_user_id"`
	AmountPence  int64  `json:"amount_pence"`
	Currency     string `json:"currency"`
	PersonsTotal int64  `json:"persons_total"`
	PaidAt       string `json:"paid_at"`
}
