package worker

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/model"
)

type fakeStore struct {
	slots     []model.ScheduleSlot
	scans     []model.TicketScan
	payments  map[uint64]model.TourPayment
	completed map[uint64]bool
	inserts   int
}

func (f *fakeStore) ListPayable(ctx context.Context, today string) ([]model.ScheduleSlot, error) {
	var out []model.ScheduleSlot
	for _, s := range f.slots {
		if s.GuideID != nil && s.SlotDate.Format("2006-01-02") <= today {
			if f.completed[s.ID] {
				s.Status = model.SlotStatusCompleted
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkCompleted(ctx context.Context, slotIDs []uint64) error {
	for _, id := range slotIDs {
		f.completed[id] = true
	}
	return nil
}

func (f *fakeStore) ListBySlots(ctx context.Context, slotIDs []uint64) ([]model.TicketScan, error) {
	want := make(map[uint64]bool, len(slotIDs))
	for _, id := range slotIDs {
		want[id] = true
	}
	var out []model.TicketScan
	for _, sc := range f.scans {
		if want[sc.SlotID] {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeStore) ExistingSlotIDs(ctx context.Context, slotIDs []uint64) (map[uint64]bool, error) {
	existing := make(map[uint64]bool)
	for _, id := range slotIDs {
		if _, ok := f.payments[id]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

// InsertPendingBatch mirrors the repository's no-op-on-conflict insert:
// an existing row is never touched.
func (f *fakeStore) InsertPendingBatch(ctx context.Context, payments []model.TourPayment) error {
	f.inserts++
	for _, p := range payments {
		if _, ok := f.payments[p.SlotID]; ok {
			continue
		}
		f.payments[p.SlotID] = p
	}
	return nil
}

func (f *fakeStore) LoadAll(ctx context.Context) (map[string]float64, error) {
	return map[string]float64{
		"price_per_person_gbp":          10,
		"vic_commission_per_person_gbp": 2,
	}, nil
}

func persons(n uint32) *uint32 { return &n }
func guideID(n uint64) *uint64 { return &n }

var testNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func newWorker(f *fakeStore) *CompletionWorker {
	return &CompletionWorker{
		Slots:    f,
		Scans:    f,
		Payments: f,
		Config:   f,
		Logger:   logrus.New(),
		Interval: 5 * time.Minute,
		Grace:    2 * time.Hour,
		Loc:      time.UTC,
		Now:      func() time.Time { return testNow },
	}
}

// A slot from yesterday with two paper scans totaling four persons at
// £10/person and £2/person commission yields a pending row of 3200
// pence.
func TestTick_CreatesPendingPayment(t *testing.T) {
	f := &fakeStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: testNow.AddDate(0, 0, -1), GuideID: guideID(9), Status: model.SlotStatusScheduled},
		},
		scans: []model.TicketScan{
			{SlotID: 1, Kind: model.KindPaper, Persons: persons(3)},
			{SlotID: 1, Kind: model.KindPaper, Persons: persons(1)},
		},
		payments:  map[uint64]model.TourPayment{},
		completed: map[uint64]bool{},
	}
	w := newWorker(f)
	w.Tick(context.Background())

	if !f.completed[1] {
		t.Fatalf("slot not transitioned to completed")
	}
	p, ok := f.payments[1]
	if !ok {
		t.Fatalf("pending payment not created")
	}
	if p.Status != model.PaymentStatusPending || p.AmountPence != 3200 || p.Currency != "GBP" || p.GuideID != 9 {
		t.Fatalf("unexpected pending payment: %+v", p)
	}
}

// Running the tick again with no new scans must not create or change
// anything.
func TestTick_Idempotent(t *testing.T) {
	f := &fakeStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: testNow.AddDate(0, 0, -1), GuideID: guideID(9), Status: model.SlotStatusScheduled},
		},
		scans:     []model.TicketScan{{SlotID: 1, Kind: model.KindPaper, Persons: persons(4)}},
		payments:  map[uint64]model.TourPayment{},
		completed: map[uint64]bool{},
	}
	w := newWorker(f)
	w.Tick(context.Background())
	first := f.payments[1]
	w.Tick(context.Background())
	w.Tick(context.Background())

	if len(f.payments) != 1 {
		t.Fatalf("expected exactly one payment row, got %d", len(f.payments))
	}
	if f.payments[1] != first {
		t.Fatalf("repeated tick changed the payment row: %+v vs %+v", first, f.payments[1])
	}
}

// A slot with only online scans has no billable VIC attendance and must
// not produce a worker payment.
func TestTick_OnlineOnlySlotSkipped(t *testing.T) {
	f := &fakeStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: testNow.AddDate(0, 0, -1), GuideID: guideID(9), Status: model.SlotStatusScheduled},
		},
		scans:     []model.TicketScan{{SlotID: 1, Kind: model.KindOnline, Persons: persons(5)}},
		payments:  map[uint64]model.TourPayment{},
		completed: map[uint64]bool{},
	}
	w := newWorker(f)
	w.Tick(context.Background())

	if !f.completed[1] {
		t.Fatalf("elapsed slot should still be completed")
	}
	if len(f.payments) != 0 {
		t.Fatalf("online-only slot must not create a payment, got %+v", f.payments)
	}
}

// A row already finalized to paid is never downgraded by a late worker
// tick.
func TestTick_NeverDowngradesPaidRow(t *testing.T) {
	paid := model.TourPayment{SlotID: 1, GuideID: 9, Status: model.PaymentStatusPaid, AmountPence: 9999, Currency: "GBP"}
	f := &fakeStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: testNow.AddDate(0, 0, -1), GuideID: guideID(9), Status: model.SlotStatusCompleted},
		},
		scans:     []model.TicketScan{{SlotID: 1, Kind: model.KindPaper, Persons: persons(4)}},
		payments:  map[uint64]model.TourPayment{1: paid},
		completed: map[uint64]bool{1: true},
	}
	w := newWorker(f)
	w.Tick(context.Background())

	if f.payments[1] != paid {
		t.Fatalf("worker downgraded a paid row: %+v", f.payments[1])
	}
	if f.inserts != 0 {
		t.Fatalf("worker attempted an insert for an already-paid slot")
	}
}

// The completion cutoff is slot start plus the grace period: one minute
// past the cutoff is eligible, one minute short of it is not.
func TestTick_CutoffBoundary(t *testing.T) {
	timeStr := func(t time.Time) *string {
		s := t.Format("15:04:05")
		return &s
	}
	eligible := testNow.Add(-2*time.Hour - time.Minute)
	notYet := testNow.Add(-2*time.Hour + time.Minute)
	f := &fakeStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: testNow, SlotTime: timeStr(eligible), GuideID: guideID(9), Status: model.SlotStatusScheduled},
			{ID: 2, SlotDate: testNow, SlotTime: timeStr(notYet), GuideID: guideID(9), Status: model.SlotStatusScheduled},
		},
		scans: []model.TicketScan{
			{SlotID: 1, Kind: model.KindPaper, Persons: persons(2)},
			{SlotID: 2, Kind: model.KindPaper, Persons: persons(2)},
		},
		payments:  map[uint64]model.TourPayment{},
		completed: map[uint64]bool{},
	}
	w := newWorker(f)
	w.Tick(context.Background())

	if !f.completed[1] {
		t.Fatalf("slot past the cutoff should be completed")
	}
	if f.completed[2] {
		t.Fatalf("slot short of the cutoff must not be completed yet")
	}
	if _, ok := f.payments[2]; ok {
		t.Fatalf("slot short of the cutoff must not be paid yet")
	}
}

// A slot dated today with no time of day defaults to midnight, which is
// past the cutoff by midday.
func TestTick_MissingTimeDefaultsToMidnight(t *testing.T) {
	f := &fakeStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: testNow, GuideID: guideID(9), Status: model.SlotStatusPlanned},
		},
		scans:     []model.TicketScan{{SlotID: 1, Kind: model.KindScanned}},
		payments:  map[uint64]model.TourPayment{},
		completed: map[uint64]bool{},
	}
	w := newWorker(f)
	w.Tick(context.Background())

	if !f.completed[1] {
		t.Fatalf("midnight slot should have elapsed by midday")
	}
	if f.payments[1].AmountPence != 800 {
		t.Fatalf("single scanned ticket expected 1000-200=800 pence, got %d", f.payments[1].AmountPence)
	}
}
