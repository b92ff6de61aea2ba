// Package router wires the HTTP handlers onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticket-booking/internal/handler"
	"github.com/iliyamo/event-ticket-booking/internal/middleware"
)

// RegisterPublic registers unauthenticated routes: the health check
// and the catalog availability read side.
func RegisterPublic(e *echo.Echo, a *handler.AvailabilityHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/events/:id/availability", a.EventAvailability)
}

// RegisterBookings registers the booking lifecycle endpoints under
// /v1.  All routes require a valid JWT; booking creation additionally
// runs behind the per-user rate limiter so one client cannot hammer
// the tier row lock.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, rdb *redis.Client, rateLimit int) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/bookings", h.Create, middleware.RateLimit(rdb, rateLimit))
	g.POST("/bookings/:id/confirm", h.Confirm)
	g.DELETE("/bookings/:id", h.Cancel)
	g.GET("/bookings/:id", h.Get)
	g.GET("/bookings/ref/:reference", h.GetByReference)
	g.GET("/my-bookings", h.List)
}

// RegisterWaitlist registers the sold-out waitlist endpoints under
// /v1.  All routes require a valid JWT.
func RegisterWaitlist(e *echo.Echo, h *handler.WaitlistHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/events/:id/waitlist", h.Join)
	g.DELETE("/events/:id/waitlist", h.Leave)
	g.GET("/events/:id/waitlist/position", h.Position)
}
