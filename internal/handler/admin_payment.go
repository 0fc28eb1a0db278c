package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chesterguides/guiding-backend/internal/invoice"
	"github.com/chesterguides/guiding-backend/internal/payment"
	"github.com/chesterguides/guiding-backend/internal/repository"
)

// AdminPaymentHandler bundles dependencies for the admin payment endpoints.
type AdminPaymentHandler struct {
	Finalizer *payment.Finalizer
	Invoices  *repository.InvoiceRepo
	Store     *invoice.Store
}

func NewAdminPaymentHandler(f *payment.Finalizer, inv *repository.InvoiceRepo, store *invoice.Store) *AdminPaymentHandler {
	return &AdminPaymentHandler{Finalizer: f, Invoices: inv, Store: store}
}

type markPaidReq struct {
	Currency    string `json:"currency"`
	AmountPence *int64 `json:"amount_pence"`
	FeesPence   int64  `json:"fees_pence"`
}

type markPaidResp struct {
	OK bool `json:"ok"`
	payment.Result
}

// MarkPaid finalizes a tour payment: compute the payable, render and
// store the invoice, upsert the invoice and payment rows, announce the
// payment.  Calling it again re-runs the whole flow, which is how admins
// correct a finalized tour.
func (h *AdminPaymentHandler) MarkPaid(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("slotId"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	var req markPaidReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	res, ferr := h.Finalizer.MarkPaid(ctx, slotID, payment.Request{
		Currency:    req.Currency,
		AmountPence: req.AmountPence,
		FeesPence:   req.FeesPence,
	})
	if ferr != nil {
		return c.JSON(ferr.Status, ferr)
	}
	return c.JSON(http.StatusOK, markPaidResp{OK: true, Result: *res})
}

// InvoiceURL resolves the stored invoice artifact for a slot to a
// serving URL.
func (h *AdminPaymentHandler) InvoiceURL(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("slotId"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Invoices.GetBySlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no invoice for this tour"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invoice lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": h.Store.URL(inv.PDFPath)})
}
