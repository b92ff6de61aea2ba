// Package handler contains the Echo HTTP handlers.  Handlers bind and
// validate request payloads, delegate to the service layer and map the
// sentinel errors of the domain onto HTTP status codes; they never
// touch the database directly.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// getUserID extracts the authenticated user ID placed in the context
// by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return 0, errors.New("no authenticated user in context")
	}
	return id, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// errorResponse maps a service error to an HTTP response.  Unknown
// errors become opaque 500s with the detail kept in the server log.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrEventNotFound),
		errors.Is(err, model.ErrTierNotFound),
		errors.Is(err, model.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrSeatCountMismatch),
		errors.Is(err, model.ErrSeatingMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrBookingClosed),
		errors.Is(err, model.ErrInsufficientSeats),
		errors.Is(err, model.ErrSeatConflict),
		errors.Is(err, model.ErrInvalidState),
		errors.Is(err, model.ErrBookingExpired),
		errors.Is(err, model.ErrAlreadyWaitlisted),
		errors.Is(err, model.ErrNotWaitlisted),
		errors.Is(err, model.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// bookingResponse is the wire shape of a booking.
type bookingResponse struct {
	ID               uint64   `json:"id"`
	Reference        string   `json:"reference"`
	EventID          uint64   `json:"event_id"`
	TierID           uint64   `json:"tier_id"`
	NumTickets       int      `json:"num_tickets"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	Status           string   `json:"status"`
	PaymentStatus    string   `json:"payment_status"`
	PaymentTxnID     *string  `json:"payment_txn_id,omitempty"`
	SeatNumbers      []string `json:"seat_numbers,omitempty"`
	CreatedAt        string   `json:"created_at"`
	ExpiresAt        string   `json:"expires_at"`
	ConfirmedAt      *string  `json:"confirmed_at,omitempty"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	resp := bookingResponse{
		ID:               b.ID,
		Reference:        b.Reference,
		EventID:          b.EventID,
		TierID:           b.TierID,
		NumTickets:       b.NumTickets,
		TotalAmountCents: b.TotalAmountCents,
		Status:           b.Status,
		PaymentStatus:    b.PaymentStatus,
		PaymentTxnID:     b.PaymentTxnID,
		SeatNumbers:      b.SeatNumbers,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
		ExpiresAt:        b.ExpiresAt.Format(time.RFC3339),
	}
	if b.ConfirmedAt != nil {
		s := b.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &s
	}
	return resp
}
