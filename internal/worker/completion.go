// Package worker contains the background jobs: the tour completion and
// payment reconciliation worker, and the tomorrow reminder worker.  Both
// poll on a fixed interval; a tick re-derives everything from storage so
// an aborted tick is always safe to retry wholesale on the next one.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/billing"
	"github.com/chesterguides/guiding-backend/internal/model"
)

// SlotStore is the slot access the completion worker needs.
type SlotStore interface {
	ListPayable(ctx context.Context, today string) ([]model.ScheduleSlot, error)
	MarkCompleted(ctx context.Context, slotIDs []uint64) error
}

// ScanStore loads ticket scans for a set of slots.
type ScanStore interface {
	ListBySlots(ctx context.Context, slotIDs []uint64) ([]model.TicketScan, error)
}

// PaymentStore checks for and creates pending payment rows.
type PaymentStore interface {
	ExistingSlotIDs(ctx context.Context, slotIDs []uint64) (map[uint64]bool, error)
	InsertPendingBatch(ctx context.Context, payments []model.TourPayment) error
}

// ConfigStore loads the pricing configuration table.
type ConfigStore interface {
	LoadAll(ctx context.Context) (map[string]float64, error)
}

const completionLockKey = "worker:tour-completion"

// CompletionWorker closes out elapsed tour slots and creates pending
// payment rows for slots with billable VIC attendance.  Ticks are
// single-flight: an in-process mutex drops a tick while one is running,
// and a best-effort Redis lease does the same across replicas.  Missed
// ticks are dropped, never queued.
type CompletionWorker struct {
	Slots    SlotStore
	Scans    ScanStore
	Payments PaymentStore
	Config   ConfigStore
	Locker   *redislock.Client // optional; nil disables the distributed lease
	Logger   *logrus.Logger
	Interval time.Duration
	Grace    time.Duration
	Loc      *time.Location
	Now      func() time.Time // injectable for tests, defaults to time.Now

	mu sync.Mutex
}

func (w *CompletionWorker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Run ticks immediately and then on every interval until the context is
// cancelled.  An in-flight tick is allowed to finish; there is no
// mid-tick cancellation because every phase is an idempotent
// re-derivation.
func (w *CompletionWorker) Run(ctx context.Context) {
	w.Tick(ctx)
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one reconciliation pass.  A tick already in progress causes
// this one to be dropped.
func (w *CompletionWorker) Tick(ctx context.Context) {
	if !w.mu.TryLock() {
		return
	}
	defer w.mu.Unlock()

	if w.Locker != nil {
		lock, err := w.Locker.Obtain(ctx, completionLockKey, w.Interval, nil)
		if err == redislock.ErrNotObtained {
			return
		}
		if err == nil {
			defer func() { _ = lock.Release(ctx) }()
		} else {
			// Redis being down degrades to the in-process guard only.
			w.Logger.WithError(err).Warn("tour completion: lease unavailable")
		}
	}
	w.runOnce(ctx)
}

// runOnce performs the phased tick.  Any storage failure logs and aborts
// the whole tick; the next interval retries from scratch.
func (w *CompletionWorker) runOnce(ctx context.Context) {
	now := w.now().UTC()
	today := now.In(w.Loc).Format("2006-01-02")

	slots, err := w.Slots.ListPayable(ctx, today)
	if err != nil {
		w.Logger.WithError(err).Error("tour completion: failed to load slots")
		return
	}

	cutoff := now.Add(-w.Grace)
	var past []model.ScheduleSlot
	for _, s := range slots {
		if !s.StartsAt(w.Loc).After(cutoff) {
			past = append(past, s)
		}
	}
	if len(past) == 0 {
		return
	}

	var toComplete []uint64
	pastIDs := make([]uint64, 0, len(past))
	for _, s := range past {
		pastIDs = append(pastIDs, s.ID)
		if s.Status != model.SlotStatusCompleted {
			toComplete = append(toComplete, s.ID)
		}
	}
	if err := w.Slots.MarkCompleted(ctx, toComplete); err != nil {
		w.Logger.WithError(err).Error("tour completion: failed to update slot status")
		return
	}

	scans, err := w.Scans.ListBySlots(ctx, pastIDs)
	if err != nil {
		w.Logger.WithError(err).Error("tour completion: failed to load ticket scans")
		return
	}
	attendance := billing.SummarizeScans(scans)

	// Only VIC attendance triggers worker-created payments: online sales
	// settle through a separate payment path.
	var billable []model.ScheduleSlot
	billableIDs := make([]uint64, 0, len(past))
	for _, s := range past {
		if attendance[s.ID].VIC > 0 {
			billable = append(billable, s)
			billableIDs = append(billableIDs, s.ID)
		}
	}
	if len(billable) == 0 {
		return
	}

	existing, err := w.Payments.ExistingSlotIDs(ctx, billableIDs)
	if err != nil {
		w.Logger.WithError(err).Error("tour completion: failed to load tour payments")
		return
	}

	var pending []model.TourPayment
	for _, s := range billable {
		if existing[s.ID] {
			continue
		}
		pending = append(pending, model.TourPayment{
			SlotID:   s.ID,
			GuideID:  *s.GuideID,
			Status:   model.PaymentStatusPending,
			Currency: model.DefaultCurrency,
		})
	}
	if len(pending) == 0 {
		return
	}

	cfg, err := w.Config.LoadAll(ctx)
	if err != nil {
		w.Logger.WithError(err).Error("tour completion: failed to load configuration")
		return
	}
	pricing, err := billing.PricingFromConfig(cfg)
	if err != nil {
		w.Logger.WithError(err).Error("tour completion: invalid pricing configuration")
		return
	}
	for i := range pending {
		pending[i].AmountPence = billing.Compute(attendance[pending[i].SlotID], pricing).NetPence
	}

	if err := w.Payments.InsertPendingBatch(ctx, pending); err != nil {
		w.Logger.WithError(err).Error("tour completion: failed to insert pending payments")
		return
	}
	w.Logger.WithFields(logrus.Fields{
		"completed": len(toComplete),
		"pending":   len(pending),
	}).Info("tour completion: tick finished")
}
