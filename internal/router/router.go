package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/chesterguides/guiding-backend/internal/handler"
	"github.com/chesterguides/guiding-backend/internal/middleware"
)

// Handlers bundles every handler the API mounts.
type Handlers struct {
	Admin        *handler.AdminPaymentHandler
	Tours        *handler.GuideTourHandler
	Scans        *handler.TicketScanHandler
	Push         *handler.PushHandler
	Availability *handler.AvailabilityHandler
}

// Register mounts all routes.  /healthz and the invoice artifacts are
// public; everything under /v1 requires a bearer token, and the /v1/admin
// subtree additionally requires the ADMIN role.
func Register(e *echo.Echo, h Handlers, jwtSecret, invoiceRoot string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Rendered invoice PDFs.  URLs are only discoverable through the
	// authenticated invoice endpoints.
	e.Static("/public/invoices", invoiceRoot)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RateLimit(rdb, 60, time.Second))

	guide := v1.Group("", middleware.RequireRole(middleware.RoleGuide, middleware.RoleAdmin))
	guide.GET("/tours/me", h.Tours.MyTours)
	guide.POST("/tours/:id/submit", h.Tours.Submit)
	guide.GET("/tours/:id/scans", h.Tours.SlotScans)
	guide.GET("/tours/:id/invoice", h.Tours.InvoiceURL)
	guide.POST("/tickets/scan", h.Scans.Scan)
	guide.POST("/guides/availability", h.Availability.Set)
	guide.GET("/guides/me/availability", h.Availability.List)
	guide.POST("/push/register", h.Push.RegisterExpo)
	guide.POST("/push/web/subscribe", h.Push.SubscribeWebPush)

	admin := v1.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	admin.POST("/tours/:slotId/mark-paid", h.Admin.MarkPaid)
	admin.GET("/tours/:slotId/invoice", h.Admin.InvoiceURL)
}
