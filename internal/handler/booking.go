package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventease/internal/model"
)

// Bookings is what BookingHandler needs from the booking service.
type Bookings interface {
    Book(ctx context.Context, userID, eventID uint64, seats int) (model.Booking, error)
    Cancel(ctx context.Context, bookingID uint64) error
    ListForUser(ctx context.Context, userID uint64) ([]model.UserBooking, error)
    ListAttendees(ctx context.Context, eventID uint64) ([]model.Attendee, error)
    RecordAttempt(ctx context.Context, userID, eventID uint64, seats int)
}

// BookingHandler serves booking, cancellation and the two booking listings.
type BookingHandler struct {
    Bookings Bookings
    Log      *zap.Logger
}

func NewBookingHandler(bookings Bookings, log *zap.Logger) *BookingHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &BookingHandler{Bookings: bookings, Log: log}
}

type bookReq struct {
    UserID flexInt  `json:"user_id"`
    Seats  *flexInt `json:"seats"`
}

type userBookingResp struct {
    ID    uint64 `json:"id"`
    Title string `json:"title"`
    Date  string `json:"date"`
    Seats int    `json:"seats"`
}

type attendeeResp struct {
    Name  string `json:"name"`
    Email string `json:"email"`
    Seats int    `json:"seats"`
}

// Book reserves 1 or 2 seats on the event in the path for the user in the
// body.  Non-admin callers may only book for themselves.
func (h *BookingHandler) Book(c echo.Context) error {
    eventID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var req bookReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    seats := 0
    if req.Seats != nil {
        seats = int(*req.Seats)
    }
    // every attempt is audited, including the ones rejected below
    h.Bookings.RecordAttempt(ctx, uint64(max(int(req.UserID), 0)), eventID, seats)

    if req.UserID <= 0 || req.Seats == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing user_id or seats"})
    }
    userID := uint64(req.UserID)
    if !callerMay(c, userID) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    b, err := h.Bookings.Book(ctx, userID, eventID, seats)
    if err != nil {
        return respondError(c, h.Log, "Book", err, "Booking failed")
    }
    h.Log.Info("booking created",
        zap.Uint64("booking_id", b.ID), zap.Uint64("user_id", userID),
        zap.Uint64("event_id", eventID), zap.Int("seats", seats))
    return c.JSON(http.StatusOK, echo.Map{"message": "Booking successful", "booking_id": b.ID})
}

// Cancel deletes a booking and frees its seats.
func (h *BookingHandler) Cancel(c echo.Context) error {
    bookingID, ok := parseIDParam(c, "bookingId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Bookings.Cancel(ctx, bookingID); err != nil {
        return respondError(c, h.Log, "Cancel", err, "Cancellation failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Booking cancelled"})
}

// ListForUser returns the bookings of the user in the path.  Non-admin
// callers may only list their own.
func (h *BookingHandler) ListForUser(c echo.Context) error {
    userID, ok := parseIDParam(c, "userId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    if !callerMay(c, userID) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    rows, err := h.Bookings.ListForUser(ctx, userID)
    if err != nil {
        return respondError(c, h.Log, "ListForUser", err, "Failed to fetch bookings")
    }
    out := make([]userBookingResp, 0, len(rows))
    for _, r := range rows {
        out = append(out, userBookingResp{
            ID:    r.ID,
            Title: r.Title,
            Date:  r.EventDate.UTC().Format(model.DisplayDateLayout),
            Seats: r.Seats,
        })
    }
    return c.JSON(http.StatusOK, out)
}

// ListAttendees returns who booked the event in the path.
func (h *BookingHandler) ListAttendees(c echo.Context) error {
    eventID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    rows, err := h.Bookings.ListAttendees(ctx, eventID)
    if err != nil {
        return respondError(c, h.Log, "ListAttendees", err, "Failed to fetch attendees")
    }
    out := make([]attendeeResp, 0, len(rows))
    for _, r := range rows {
        out = append(out, attendeeResp{Name: r.Name, Email: r.Email, Seats: r.Seats})
    }
    return c.JSON(http.StatusOK, out)
}
