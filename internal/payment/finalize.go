// Package payment implements the admin finalization flow: recompute a
// slot's payable with the shared billing calculator, render and store the
// invoice artifact, write the authoritative paid payment and invoice
// rows, and announce the completed payment.  The stores are narrow
// interfaces so the flow is wired with repositories in production and
// with in-memory fakes in tests.
package payment

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/billing"
	"github.com/chesterguides/guiding-backend/internal/invoice"
	"github.com/chesterguides/guiding-backend/internal/model"
	"github.com/chesterguides/guiding-backend/internal/queue"
	"github.com/chesterguides/guiding-backend/internal/repository"
)

// SlotStore resolves schedule slots.
type SlotStore interface {
	GetByID(ctx context.Context, slotID uint64) (*model.ScheduleSlot, error)
}

// GuideStore resolves guides.
type GuideStore interface {
	GetByID(ctx context.Context, guideID uint64) (*model.Guide, error)
}

// ScanStore lists a slot's ticket scans.
type ScanStore interface {
	ListBySlot(ctx context.Context, slotID uint64) ([]model.TicketScan, error)
}

// ConfigStore loads the pricing configuration table.
type ConfigStore interface {
	LoadAll(ctx context.Context) (map[string]float64, error)
}

// PaymentStore writes the paid payment row.
type PaymentStore interface {
	UpsertPaid(ctx context.Context, p model.TourPayment) error
}

// InvoiceStore writes the invoice row.
type InvoiceStore interface {
	Upsert(ctx context.Context, inv model.TourInvoice) error
}

// ArtifactStore persists the rendered PDF.
type ArtifactStore interface {
	Save(relPath string, data []byte) error
}

// Request carries the admin-supplied overrides for one finalization.
type Request struct {
	Currency    string // defaults to GBP
	AmountPence *int64 // optional invoice total override
	FeesPence   int64  // fees deducted from the override
}

// Result is returned to the admin on success.
type Result struct {
	SlotID        uint64 `json:"slotId"`
	PDFPath       string `json:"pdf_path"`
	PersonsTotal  int64  `json:"personsTotal"`
	VICPersons    int64  `json:"vicPersons"`
	OnlinePersons int64  `json:"onlinePersons"`
}

// Error is a finalization failure.  Committed names the side effects
// known to have completed before the failure so clients can reason about
// whether a retry is safe or merely redundant; an empty list means
// nothing was written.
type Error struct {
	Status    int      `json:"-"`
	Message   string   `json:"error"`
	Details   string   `json:"details,omitempty"`
	Committed []string `json:"committed,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Side effects reported in Error.Committed.
const (
	CommittedPDF     = "invoice_pdf"
	CommittedInvoice = "invoice_row"
	CommittedPayment = "payment_row"
)

// Finalizer performs the mark-paid flow.  All lookups are fresh on every
// call; nothing is cached across finalizations.
type Finalizer struct {
	Slots     SlotStore
	Guides    GuideStore
	Scans     ScanStore
	Config    ConfigStore
	Payments  PaymentStore
	Invoices  InvoiceStore
	Artifacts ArtifactStore
	Render    func(invoice.Document) ([]byte, error)
	Publish   func(ctx context.Context, ev queue.PaymentCompletedEvent) error
	Logger    *logrus.Logger
	Now       func() time.Time
}

func (f *Finalizer) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}

// MarkPaid finalizes the payment for one slot.  The flow is safe to call
// repeatedly: both row writes are upserts keyed on the slot and the
// artifact is overwritten in place.  The published notification is
// best-effort and never fails the flow once the payment row is
// committed.
func (f *Finalizer) MarkPaid(ctx context.Context, slotID uint64, req Request) (*Result, *Error) {
	if req.FeesPence < 0 {
		return nil, &Error{Status: http.StatusBadRequest, Message: "fees_pence must not be negative"}
	}
	if req.AmountPence != nil && *req.AmountPence < 0 {
		return nil, &Error{Status: http.StatusBadRequest, Message: "amount_pence must not be negative"}
	}
	currency := req.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	slot, err := f.Slots.GetByID(ctx, slotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return nil, &Error{Status: http.StatusNotFound, Message: "Slot not found"}
		}
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to load slot", Details: err.Error()}
	}
	if slot.GuideID == nil {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Slot has no guide"}
	}

	guide, err := f.Guides.GetByID(ctx, *slot.GuideID)
	if err != nil {
		if err == repository.ErrGuideNotFound {
			return nil, &Error{Status: http.StatusNotFound, Message: "Guide not found"}
		}
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to load guide", Details: err.Error()}
	}

	scans, err := f.Scans.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to load tickets", Details: err.Error()}
	}
	att := billing.SummarizeScans(scans)[slotID]

	cfg, err := f.Config.LoadAll(ctx)
	if err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to load configuration", Details: err.Error()}
	}
	pricing, err := billing.PricingFromConfig(cfg)
	if err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Invalid pricing configuration", Details: err.Error()}
	}
	amounts := billing.Compute(att, pricing)

	// The invoice records the admin override net of fees when supplied,
	// otherwise the computed net.  The payment row always records the
	// computed net so worker- and admin-derived figures agree.
	invoiceAmount := amounts.NetPence
	if req.AmountPence != nil {
		invoiceAmount = *req.AmountPence - req.FeesPence
		if invoiceAmount < 0 {
			invoiceAmount = 0
		}
	}

	doc := invoice.Document{
		InvoiceNo:          invoice.Number(slotID),
		GuideName:          guide.Name,
		InvoiceDate:        slot.SlotDate,
		PersonsTotal:       att.Total,
		GrossPence:         amounts.GrossPence,
		VICCommissionPence: amounts.CommissionPence,
		TotalPayablePence:  amounts.NetPence,
		BankPayeeName:      deref(guide.BankPayeeName),
		BankSortCode:       deref(guide.BankSortCode),
		BankAccountNumber:  deref(guide.BankAccountNumber),
		BankEmail:          deref(guide.BankEmail),
	}
	pdf, err := f.Render(doc)
	if err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to render invoice", Details: err.Error()}
	}

	committed := []string{}
	pdfPath := invoice.PathFor(slotID)
	if err := f.Artifacts.Save(pdfPath, pdf); err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to store invoice PDF", Details: err.Error()}
	}
	committed = append(committed, CommittedPDF)

	if err := f.Invoices.Upsert(ctx, model.TourInvoice{
		SlotID:      slotID,
		GuideID:     guide.ID,
		PDFPath:     pdfPath,
		AmountPence: invoiceAmount,
		Currency:    currency,
		Persons:     att.Total,
	}); err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to write tour_invoices", Details: err.Error(), Committed: committed}
	}
	committed = append(committed, CommittedInvoice)

	if err := f.Payments.UpsertPaid(ctx, model.TourPayment{
		SlotID:      slotID,
		GuideID:     guide.ID,
		Status:      model.PaymentStatusPaid,
		AmountPence: amounts.NetPence,
		Currency:    model.DefaultCurrency,
	}); err != nil {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "Failed to update tour_payments", Details: err.Error(), Committed: committed}
	}

	// Payment state is authoritative from here on; notification delivery
	// is best-effort.
	if f.Publish != nil {
		ev := queue.PaymentCompletedEvent{
			SlotID:       slotID,
			GuideID:      guide.ID,
			GuideUserID:  guide.UserID,
			AmountPence:  amounts.NetPence,
			Currency:     model.DefaultCurrency,
			PersonsTotal: att.Total,
			PaidAt:       f.now().Format(time.RFC3339),
		}
		if err := f.Publish(ctx, ev); err != nil {
			f.Logger.WithError(err).WithFields(logrus.Fields{"slot_id": slotID}).Warn("payment completed event publish failed")
		}
	}

	return &Result{
		SlotID:        slotID,
		PDFPath:       pdfPath,
		PersonsTotal:  att.Total,
		VICPersons:    att.VIC,
		OnlinePersons: att.Online,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
