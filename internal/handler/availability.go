package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/service"
)

// AvailabilityHandler exposes the public catalog read side.
type AvailabilityHandler struct {
	Availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	if availability == nil {
		panic("nil availability service passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Availability: availability}
}

// EventAvailability handles GET /v1/events/:id/availability.  The
// counts come from a short-lived cache and may briefly lag the
// authoritative inventory.
func (h *AvailabilityHandler) EventAvailability(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	tiers, err := h.Availability.EventAvailability(c.Request().Context(), eventID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id": eventID,
		"tiers":    tiers,
	})
}
