package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/service"
)

// WaitlistHandler exposes the sold-out waitlist over HTTP.
type WaitlistHandler struct {
	Waitlist *service.WaitlistService
}

// NewWaitlistHandler constructs a WaitlistHandler.
func NewWaitlistHandler(waitlist *service.WaitlistService) *WaitlistHandler {
	if waitlist == nil {
		panic("nil waitlist service passed to NewWaitlistHandler")
	}
	return &WaitlistHandler{Waitlist: waitlist}
}

// Join handles POST /v1/events/:id/waitlist.  Joining is only allowed
// once every tier of the event is sold out.
func (h *WaitlistHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	entry, err := h.Waitlist.Join(c.Request().Context(), eventID, userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"event_id":  entry.EventID,
		"status":    entry.Status,
		"joined_at": entry.JoinedAt.Format(time.RFC3339),
	})
}

// Leave handles DELETE /v1/events/:id/waitlist.
func (h *WaitlistHandler) Leave(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Waitlist.Leave(c.Request().Context(), eventID, userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "left"})
}

// Position handles GET /v1/events/:id/waitlist/position.
func (h *WaitlistHandler) Position(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	pos, err := h.Waitlist.Position(c.Request().Context(), eventID, userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id": eventID,
		"position": pos,
	})
}
