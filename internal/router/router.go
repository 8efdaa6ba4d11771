package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-booking/internal/handler"
	"github.com/iliyamo/room-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// db may be nil when the service runs on the in-memory store.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// BookingRoutes carries what RegisterBookings needs besides the handler.
type BookingRoutes struct {
	JWTSecret          string
	AdminRole          string
	AllowGuestBookings bool
	// CreateLimiter guards POST /v1/bookings; nil disables it.
	CreateLimiter echo.MiddlewareFunc
}

// RegisterBookings mounts the booking API under /v1.  Creation accepts
// guests when AllowGuestBookings is set; every other route requires a
// token.  Admin checks happen in the service, not here, so a non-admin
// gets the domain's Forbidden error rather than a generic one.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, cfg BookingRoutes) {
	strict := middleware.JWTAuth(cfg.JWTSecret, cfg.AdminRole, false)

	create := []echo.MiddlewareFunc{middleware.JWTAuth(cfg.JWTSecret, cfg.AdminRole, cfg.AllowGuestBookings)}
	if cfg.CreateLimiter != nil {
		create = append(create, cfg.CreateLimiter)
	}
	e.POST("/v1/bookings", h.Create, create...)

	g := e.Group("/v1", strict)
	g.GET("/bookings", h.List)
	g.GET("/bookings/:id", h.Get)
	g.PATCH("/bookings/:id/status", h.UpdateStatus)
	g.GET("/my-bookings", h.ListMine)
}
