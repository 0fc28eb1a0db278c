package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/invoice"
	"github.com/chesterguides/guiding-backend/internal/model"
	"github.com/chesterguides/guiding-backend/internal/queue"
	"github.com/chesterguides/guiding-backend/internal/repository"
)

type fakeStores struct {
	slots     map[uint64]*model.ScheduleSlot
	guides    map[uint64]*model.Guide
	scans     map[uint64][]model.TicketScan
	config    map[string]float64
	configErr error

	payments    map[uint64]model.TourPayment
	invoices    map[uint64]model.TourInvoice
	artifacts   map[string][]byte
	invoiceErr  error
	paymentErr  error
	artifactErr error
}

func (f *fakeStores) GetByID(ctx context.Context, id uint64) (*model.ScheduleSlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	return s, nil
}

type guideStore fakeStores

func (g *guideStore) GetByID(ctx context.Context, id uint64) (*model.Guide, error) {
	gd, ok := g.guides[id]
	if !ok {
		return nil, repository.ErrGuideNotFound
	}
	return gd, nil
}

func (f *fakeStores) ListBySlot(ctx context.Context, slotID uint64) ([]model.TicketScan, error) {
	return f.scans[slotID], nil
}

func (f *fakeStores) LoadAll(ctx context.Context) (map[string]float64, error) {
	return f.config, f.configErr
}

func (f *fakeStores) UpsertPaid(ctx context.Context, p model.TourPayment) error {
	if f.paymentErr != nil {
		return f.paymentErr
	}
	f.payments[p.SlotID] = p
	return nil
}

func (f *fakeStores) Upsert(ctx context.Context, inv model.TourInvoice) error {
	if f.invoiceErr != nil {
		return f.invoiceErr
	}
	f.invoices[inv.SlotID] = inv
	return nil
}

func (f *fakeStores) Save(relPath string, data []byte) error {
	if f.artifactErr != nil {
		return f.artifactErr
	}
	f.artifacts[relPath] = data
	return nil
}

func persons(n uint32) *uint32 { return &n }
func guideID(n uint64) *uint64 { return &n }

func newFixture() *fakeStores {
	return &fakeStores{
		slots: map[uint64]*model.ScheduleSlot{
			5: {
				ID:       5,
				SlotDate: time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
				GuideID:  guideID(9),
				Status:   model.SlotStatusCompleted,
			},
		},
		guides: map[uint64]*model.Guide{
			9: {ID: 9, UserID: "user-9", Name: "Jo Bloggs"},
		},
		scans: map[uint64][]model.TicketScan{
			5: {
				{SlotID: 5, Kind: model.KindPaper, Persons: persons(3)},
				{SlotID: 5, Kind: model.KindPaper, Persons: persons(1)},
			},
		},
		config: map[string]float64{
			"price_per_person_gbp":          10,
			"vic_commission_per_person_gbp": 2,
		},
		payments:  map[uint64]model.TourPayment{},
		invoices:  map[uint64]model.TourInvoice{},
		artifacts: map[string][]byte{},
	}
}

func newFinalizer(f *fakeStores, published *[]queue.PaymentCompletedEvent, publishErr error) *Finalizer {
	logger := logrus.New()
	return &Finalizer{
		Slots:     f,
		Guides:    (*guideStore)(f),
		Scans:     f,
		Config:    f,
		Payments:  f,
		Invoices:  f,
		Artifacts: f,
		Render:    func(doc invoice.Document) ([]byte, error) { return []byte("%PDF-fake"), nil },
		Publish: func(ctx context.Context, ev queue.PaymentCompletedEvent) error {
			if publishErr != nil {
				return publishErr
			}
			if published != nil {
				*published = append(*published, ev)
			}
			return nil
		},
		Logger: logger,
	}
}

// Four paper persons at £10/person with £2/person VIC commission pay
// out 4×1000 − 4×200 = 3200 pence.
func TestMarkPaid_ComputesAndPersists(t *testing.T) {
	f := newFixture()
	var published []queue.PaymentCompletedEvent
	fin := newFinalizer(f, &published, nil)

	res, ferr := fin.MarkPaid(context.Background(), 5, Request{})
	if ferr != nil {
		t.Fatalf("MarkPaid error: %v", ferr)
	}
	if res.PersonsTotal != 4 || res.VICPersons != 4 || res.OnlinePersons != 0 {
		t.Fatalf("unexpected attendance in result: %+v", res)
	}
	p, ok := f.payments[5]
	if !ok {
		t.Fatalf("payment row not written")
	}
	if p.Status != model.PaymentStatusPaid || p.AmountPence != 3200 || p.Currency != "GBP" {
		t.Fatalf("unexpected payment row: %+v", p)
	}
	inv := f.invoices[5]
	if inv.AmountPence != 3200 || inv.Persons != 4 {
		t.Fatalf("unexpected invoice row: %+v", inv)
	}
	if inv.PDFPath != res.PDFPath {
		t.Fatalf("invoice path %q differs from result path %q", inv.PDFPath, res.PDFPath)
	}
	if _, ok := f.artifacts[res.PDFPath]; !ok {
		t.Fatalf("artifact not stored at %q", res.PDFPath)
	}
	if len(published) != 1 || published[0].AmountPence != 3200 || published[0].GuideUserID != "user-9" {
		t.Fatalf("unexpected published events: %+v", published)
	}
}

func TestMarkPaid_Idempotent(t *testing.T) {
	f := newFixture()
	fin := newFinalizer(f, nil, nil)

	first, ferr := fin.MarkPaid(context.Background(), 5, Request{})
	if ferr != nil {
		t.Fatalf("first MarkPaid error: %v", ferr)
	}
	second, ferr := fin.MarkPaid(context.Background(), 5, Request{})
	if ferr != nil {
		t.Fatalf("second MarkPaid error: %v", ferr)
	}
	if *first != *second {
		t.Fatalf("results diverged: %+v vs %+v", first, second)
	}
	if len(f.payments) != 1 || len(f.invoices) != 1 {
		t.Fatalf("expected exactly one payment and one invoice row, got %d/%d", len(f.payments), len(f.invoices))
	}
	if f.payments[5].AmountPence != 3200 {
		t.Fatalf("second call changed the payment amount: %+v", f.payments[5])
	}
}

// An admin override changes only the invoice figure; the payment row
// keeps the computed net so worker and admin totals agree.
func TestMarkPaid_OverrideNetOfFees(t *testing.T) {
	f := newFixture()
	fin := newFinalizer(f, nil, nil)

	amount := int64(5000)
	res, ferr := fin.MarkPaid(context.Background(), 5, Request{AmountPence: &amount, FeesPence: 300})
	if ferr != nil {
		t.Fatalf("MarkPaid error: %v", ferr)
	}
	if f.invoices[res.SlotID].AmountPence != 4700 {
		t.Fatalf("invoice amount expected 4700, got %d", f.invoices[res.SlotID].AmountPence)
	}
	if f.payments[res.SlotID].AmountPence != 3200 {
		t.Fatalf("payment amount expected computed 3200, got %d", f.payments[res.SlotID].AmountPence)
	}
}

func TestMarkPaid_SlotWithoutGuide(t *testing.T) {
	f := newFixture()
	f.slots[5].GuideID = nil
	fin := newFinalizer(f, nil, nil)

	_, ferr := fin.MarkPaid(context.Background(), 5, Request{})
	if ferr == nil || ferr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for guideless slot, got %+v", ferr)
	}
	if len(f.payments) != 0 || len(f.invoices) != 0 || len(f.artifacts) != 0 {
		t.Fatalf("side effects written on validation failure")
	}
}

func TestMarkPaid_InvalidConfigIsFatal(t *testing.T) {
	f := newFixture()
	delete(f.config, "vic_commission_per_person_gbp")
	fin := newFinalizer(f, nil, nil)

	_, ferr := fin.MarkPaid(context.Background(), 5, Request{})
	if ferr == nil || ferr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing pricing key, got %+v", ferr)
	}
	if len(f.payments) != 0 || len(f.artifacts) != 0 {
		t.Fatalf("side effects written despite invalid configuration")
	}
}

// When a write fails midway the error reports which side effects had
// already completed.
func TestMarkPaid_ReportsCommittedSideEffects(t *testing.T) {
	f := newFixture()
	f.invoiceErr = errors.New("db down")
	fin := newFinalizer(f, nil, nil)

	_, ferr := fin.MarkPaid(context.Background(), 5, Request{})
	if ferr == nil {
		t.Fatalf("expected error")
	}
	if len(ferr.Committed) != 1 || ferr.Committed[0] != CommittedPDF {
		t.Fatalf("expected committed=[%s], got %v", CommittedPDF, ferr.Committed)
	}
}

// A broker outage after the payment row is committed must not fail the
// flow: the payment state is authoritative, notification is best-effort.
func TestMarkPaid_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	fin := newFinalizer(f, nil, errors.New("broker down"))

	res, ferr := fin.MarkPaid(context.Background(), 5, Request{})
	if ferr != nil {
		t.Fatalf("MarkPaid error: %v", ferr)
	}
	if f.payments[res.SlotID].Status != model.PaymentStatusPaid {
		t.Fatalf("payment row missing after publish failure")
	}
}
