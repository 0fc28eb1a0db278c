package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chesterguides/guiding-backend/internal/middleware"
	"github.com/chesterguides/guiding-backend/internal/model"
	"github.com/chesterguides/guiding-backend/internal/repository"
)

// vicPrefix marks ticket codes sold at the Visitor Information Centre.
// Codes carry a head count and a till reference after the prefix, e.g.
// "Chester walking tour sold by VIC - 3 persons - reference #1042".
const vicPrefix = "Chester walking tour sold by VIC - "

var (
	vicFullRe   = regexp.MustCompile(`(?i)^(\d+)\s+person(?:\(s\)|s)?\s+-\s+reference\s+#(\d+)$`)
	vicSimpleRe = regexp.MustCompile(`(?i)^reference\s+#(\d+)$`)
)

// parseTicketCode classifies a raw code.  VIC codes become paper tickets
// with the embedded head count (one when the count is absent or
// unparseable) and are reduced to the bare till reference, so the same
// sale dedups regardless of spacing or casing in the scanned label.
// Anything else is a generic scanned ticket stored verbatim with no
// count.
func parseTicketCode(raw string) (code, kind string, persons *uint32) {
	if !strings.HasPrefix(raw, vicPrefix) {
		return raw, model.KindScanned, nil
	}
	content := strings.TrimSpace(raw[len(vicPrefix):])
	n := uint32(1)
	if m := vicFullRe.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseUint(m[1], 10, 32); err == nil && v > 0 {
			n = uint32(v)
		}
		return m[2], model.KindPaper, &n
	}
	if m := vicSimpleRe.FindStringSubmatch(content); m != nil {
		return m[1], model.KindPaper, &n
	}
	return content, model.KindPaper, &n
}

// TicketScanHandler records ticket scans against the guide's own slots.
type TicketScanHandler struct {
	Guides *repository.GuideRepo
	Slots  *repository.SlotRepo
	Scans  *repository.ScanRepo
}

func NewTicketScanHandler(g *repository.GuideRepo, s *repository.SlotRepo, sc *repository.ScanRepo) *TicketScanHandler {
	return &TicketScanHandler{Guides: g, Slots: s, Scans: sc}
}

type scanTicketReq struct {
	SlotID uint64 `json:"slot_id"`
	Code   string `json:"code"`
}

// Scan records one ticket scan.  The code is classified by
// parseTicketCode and duplicate codes are rejected with 400 so a ticket
// can never be counted twice.
func (h *TicketScanHandler) Scan(c echo.Context) error {
	var req scanTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.SlotID == 0 || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id and code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := middleware.UserID(c)
	guide, err := h.Guides.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrGuideNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no guide profile for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "guide lookup failed"})
	}

	slot, err := h.Slots.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tour lookup failed"})
	}
	if slot.GuideID == nil || *slot.GuideID != guide.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	code, kind, persons := parseTicketCode(req.Code)
	scan := &model.TicketScan{
		SlotID:    req.SlotID,
		Code:      code,
		Kind:      kind,
		Persons:   persons,
		ScannedBy: &userID,
	}
	if err := h.Scans.Create(ctx, scan); err != nil {
		if errors.Is(err, repository.ErrDuplicateScan) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket already scanned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"ok":      true,
		"id":      scan.ID,
		"kind":    kind,
		"persons": scan.PersonCount(),
	})
}
