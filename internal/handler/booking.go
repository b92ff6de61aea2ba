package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.  All routes
// sit behind JWTAuth; the creation route additionally runs behind the
// per-user rate limiter.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// Create handles POST /v1/bookings.  The body names the event, the
// tier, the ticket count and optionally explicit seat numbers.  On
// success it returns 201 with the pending booking including its
// payment deadline.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		EventID     uint64   `json:"event_id"`
		TierID      uint64   `json:"tier_id"`
		NumTickets  int      `json:"num_tickets"`
		SeatNumbers []string `json:"seat_numbers"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == 0 || body.TierID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and tier_id are required"})
	}
	if body.NumTickets < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "num_tickets must be at least 1"})
	}
	seats := make([]string, 0, len(body.SeatNumbers))
	for _, s := range body.SeatNumbers {
		s = strings.TrimSpace(s)
		if s == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat numbers must not be blank"})
		}
		seats = append(seats, s)
	}

	booking, err := h.Bookings.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		UserID:      userID,
		EventID:     body.EventID,
		TierID:      body.TierID,
		NumTickets:  body.NumTickets,
		SeatNumbers: seats,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// Confirm handles POST /v1/bookings/:id/confirm.  The body carries the
// external payment transaction ID.  A booking whose deadline already
// passed is expired on the spot and the request fails with 409.
func (h *BookingHandler) Confirm(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		PaymentTxnID string `json:"payment_txn_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.PaymentTxnID = strings.TrimSpace(body.PaymentTxnID)
	if body.PaymentTxnID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_txn_id is required"})
	}

	ctx := c.Request().Context()
	// Ownership check before mutating; confirmation is owner-only.
	if _, err := h.Bookings.GetBooking(ctx, bookingID, userID); err != nil {
		return errorResponse(c, err)
	}
	booking, err := h.Bookings.ConfirmPayment(ctx, bookingID, body.PaymentTxnID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// Cancel handles DELETE /v1/bookings/:id.  Only a confirmed
// booking owned by the caller can be cancelled; the freed inventory is
// credited back and a refund is recorded.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Bookings.CancelBooking(c.Request().Context(), bookingID, userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.BookingStatusCancelled})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Bookings.GetBooking(c.Request().Context(), bookingID, userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// GetByReference handles GET /v1/bookings/ref/:reference.
// The reference code acts as the lookup capability, so this route does
// not enforce ownership.
func (h *BookingHandler) GetByReference(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference"})
	}
	booking, err := h.Bookings.GetBookingByReference(c.Request().Context(), reference)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// List handles GET /v1/my-bookings and returns the caller's bookings,
// newest first.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Bookings.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}
