package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chesterguides/guiding-backend/internal/middleware"
	"github.com/chesterguides/guiding-backend/internal/repository"
)

// AvailabilityHandler manages a guide's declared availability calendar.
type AvailabilityHandler struct {
	Guides       *repository.GuideRepo
	Availability *repository.AvailabilityRepo
}

func NewAvailabilityHandler(g *repository.GuideRepo, a *repository.AvailabilityRepo) *AvailabilityHandler {
	return &AvailabilityHandler{Guides: g, Availability: a}
}

type setAvailabilityReq struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Available *bool  `json:"available"`
}

// Set upserts one availability day for the authenticated guide.
func (h *AvailabilityHandler) Set(c echo.Context) error {
	var req setAvailabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.Available == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guide, err := h.Guides.GetByUserID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no guide profile for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "guide lookup failed"})
	}

	if err := h.Availability.Upsert(ctx, guide.ID, req.Date, *req.Available); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

type availabilityPart struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// List returns the guide's availability, optionally bounded to one
// calendar month via ?month=YYYY-MM.
func (h *AvailabilityHandler) List(c echo.Context) error {
	from, to := "", ""
	if month := c.QueryParam("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be YYYY-MM"})
		}
		from = start.Format("2006-01-02")
		to = start.AddDate(0, 1, 0).Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guide, err := h.Guides.GetByUserID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no guide profile for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "guide lookup failed"})
	}

	rows, err := h.Availability.ListByGuide(ctx, guide.ID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}

	out := make([]availabilityPart, 0, len(rows))
	for _, r := range rows {
		out = append(out, availabilityPart{Date: r.Date.Format("2006-01-02"), Available: r.IsAvailable})
	}
	return c.JSON(http.StatusOK, echo.Map{"availability": out})
}
