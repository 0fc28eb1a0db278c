package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chesterguides/guiding-backend/internal/invoice"
	"github.com/chesterguides/guiding-backend/internal/middleware"
	"github.com/chesterguides/guiding-backend/internal/model"
	"github.com/chesterguides/guiding-backend/internal/repository"
)

// GuideStore resolves authenticated users to guide rows.
type GuideStore interface {
	GetByUserID(ctx context.Context, userID string) (*model.Guide, error)
}

// SlotStore covers the slot operations the guide endpoints need.
type SlotStore interface {
	GetByID(ctx context.Context, slotID uint64) (*model.ScheduleSlot, error)
	ListByGuide(ctx context.Context, guideID uint64) ([]model.ScheduleSlot, error)
	SubmitCompletion(ctx context.Context, slotID, guideID uint64, participants uint32) error
}

// ScanStore lists the ticket scans recorded against a slot.
type ScanStore interface {
	ListBySlot(ctx context.Context, slotID uint64) ([]model.TicketScan, error)
}

// InvoiceStore looks up stored invoice rows.
type InvoiceStore interface {
	GetBySlot(ctx context.Context, slotID uint64) (*model.TourInvoice, error)
}

// GuideTourHandler serves the guide-facing tour endpoints.  Every
// operation resolves the guide from the bearer token subject and only
// touches that guide's own slots.
type GuideTourHandler struct {
	Guides   GuideStore
	Slots    SlotStore
	Scans    ScanStore
	Invoices InvoiceStore
	Store    *invoice.Store
}

func NewGuideTourHandler(g GuideStore, s SlotStore, sc ScanStore, inv InvoiceStore, store *invoice.Store) *GuideTourHandler {
	return &GuideTourHandler{Guides: g, Slots: s, Scans: sc, Invoices: inv, Store: store}
}

type slotPart struct {
	ID                   uint64  `json:"id"`
	Date                 string  `json:"date"`
	Time                 *string `json:"time"`
	Status               string  `json:"status"`
	ParticipantsReported *uint32 `json:"participants_reported"`
}

type scanPart struct {
	ID      uint64  `json:"id"`
	Code    string  `json:"code"`
	Kind    string  `json:"kind"`
	Persons int64   `json:"persons"`
	Scanned string  `json:"scanned_at"`
	By      *string `json:"scanned_by"`
}

func slotToPart(s model.ScheduleSlot) slotPart {
	return slotPart{
		ID:                   s.ID,
		Date:                 s.SlotDate.Format("2006-01-02"),
		Time:                 s.SlotTime,
		Status:               s.Status,
		ParticipantsReported: s.ParticipantsReported,
	}
}

// currentGuide resolves the authenticated user to their guide row.
func (h *GuideTourHandler) currentGuide(ctx context.Context, c echo.Context) (*model.Guide, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return nil, repository.ErrGuideNotFound
	}
	return h.Guides.GetByUserID(ctx, userID)
}

// MyTours lists the authenticated guide's slots, ordered by date and
// time.
func (h *GuideTourHandler) MyTours(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guide, err := h.currentGuide(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no guide profile for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "guide lookup failed"})
	}

	slots, err := h.Slots.ListByGuide(ctx, guide.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tour lookup failed"})
	}

	out := make([]slotPart, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotToPart(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": out})
}

type submitReq struct {
	ParticipantCount *uint32 `json:"participant_count"`
}

// Submit records the reported head count and marks the guide's own slot
// completed.  Submitting someone else's slot, or an unknown one, is a
// 404 so slot existence is never leaked across guides.
func (h *GuideTourHandler) Submit(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ParticipantCount == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "participant_count required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guide, err := h.currentGuide(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no guide profile for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "guide lookup failed"})
	}

	if err := h.Slots.SubmitCompletion(ctx, slotID, guide.ID, *req.ParticipantCount); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "slotId": slotID})
}

// SlotScans lists the ticket scans recorded on one of the guide's own
// slots.
func (h *GuideTourHandler) SlotScans(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.ownedSlot(ctx, c, slotID)
	if err != nil {
		return h.ownershipError(c, err)
	}

	scans, err := h.Scans.ListBySlot(ctx, slot.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan lookup failed"})
	}

	out := make([]scanPart, 0, len(scans))
	for _, s := range scans {
		out = append(out, scanPart{
			ID:      s.ID,
			Code:    s.Code,
			Kind:    s.Kind,
			Persons: s.PersonCount(),
			Scanned: s.CreatedAt.UTC().Format(time.RFC3339),
			By:      s.ScannedBy,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"scans": out})
}

// InvoiceURL resolves the invoice artifact for one of the guide's own
// slots to a serving URL.
func (h *GuideTourHandler) InvoiceURL(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.ownedSlot(ctx, c, slotID); err != nil {
		return h.ownershipError(c, err)
	}

	inv, err := h.Invoices.GetBySlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no invoice for this tour"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invoice lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": h.Store.URL(inv.PDFPath)})
}

// ownedSlot loads a slot and verifies it belongs to the authenticated
// guide.  It never writes a response; failures come back as repository
// sentinels for ownershipError to translate.
func (h *GuideTourHandler) ownedSlot(ctx context.Context, c echo.Context, slotID uint64) (*model.ScheduleSlot, error) {
	guide, err := h.currentGuide(ctx, c)
	if err != nil {
		return nil, err
	}
	slot, err := h.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.GuideID == nil || *slot.GuideID != guide.ID {
		return nil, repository.ErrForbidden
	}
	return slot, nil
}

// ownershipError writes the JSON response for an ownedSlot failure.
func (h *GuideTourHandler) ownershipError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrGuideNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no guide profile for this user"})
	case errors.Is(err, repository.ErrSlotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tour lookup failed"})
}
