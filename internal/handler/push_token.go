package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chesterguides/guiding-backend/internal/middleware"
	"github.com/chesterguides/guiding-backend/internal/model"
	"github.com/chesterguides/guiding-backend/internal/repository"
)

// PushHandler registers device push endpoints for the authenticated user.
type PushHandler struct {
	Tokens *repository.PushTokenRepo
}

func NewPushHandler(t *repository.PushTokenRepo) *PushHandler {
	return &PushHandler{Tokens: t}
}

type registerTokenReq struct {
	Token string `json:"token"`
}

// RegisterExpo upserts an Expo push token.  Re-registering a token moves
// it to the current user, which is what happens when a shared device
// changes hands.
func (h *PushHandler) RegisterExpo(c echo.Context) error {
	var req registerTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RegisterExpoToken(ctx, middleware.UserID(c), req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

type webPushSubscribeReq struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// SubscribeWebPush upserts a browser push subscription, keyed on the
// endpoint URL.
func (h *PushHandler) SubscribeWebPush(c echo.Context) error {
	var req webPushSubscribeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endpoint and keys required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sub := model.WebPushSubscription{
		UserID:   middleware.UserID(c),
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.Tokens.RegisterWebPush(ctx, sub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "subscribe failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
