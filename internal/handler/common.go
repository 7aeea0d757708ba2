package handler // handler defines http handlers

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventease/internal/middleware"
    "github.com/iliyamo/eventease/internal/model"
    "github.com/iliyamo/eventease/internal/service"
)

// storeTimeout bounds every service call made on behalf of a request.
const storeTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// flexInt decodes a JSON number or a numeric string.  Browser forms post
// seats and ids as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if bytes.Equal(b, []byte("null")) {
        return nil
    }
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        s = strings.TrimSpace(s)
        if s == "" {
            *f = 0
            return nil
        }
        n, err := strconv.Atoi(s)
        if err != nil {
            return err
        }
        *f = flexInt(n)
        return nil
    }
    var n int
    if err := json.Unmarshal(b, &n); err != nil {
        return err
    }
    *f = flexInt(n)
    return nil
}

// isAdmin reports whether the caller holds the admin role.
func isAdmin(c echo.Context) bool {
    role, _ := middleware.Role(c)
    return role == model.RoleAdmin
}

// callerMay reports whether the authenticated caller may act for userID:
// admins act for anyone, users only for themselves.
func callerMay(c echo.Context, userID uint64) bool {
    if isAdmin(c) {
        return true
    }
    uid, ok := middleware.UserID(c)
    return ok && uid == userID
}

// errorMessage is the client-facing text for a classified service error.
func errorMessage(err error) string {
    var limit *service.PerUserLimitError
    switch {
    case errors.As(err, &limit):
        return limit.Error()
    case errors.Is(err, service.ErrInvalidSeats):
        return "You can only book 1 or 2 seats per event"
    case errors.Is(err, service.ErrCapacityExceeded):
        return "Not enough seats available"
    case errors.Is(err, service.ErrCapacityBelowBooked):
        return "Capacity cannot be lower than seats already booked"
    case errors.Is(err, service.ErrEventNotFound):
        return "Event not found"
    case errors.Is(err, service.ErrBookingNotFound):
        return "Booking not found"
    case errors.Is(err, service.ErrValidation):
        msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
        if msg == "" {
            return "Invalid input"
        }
        return strings.ToUpper(msg[:1]) + msg[1:]
    default:
        return err.Error()
    }
}

// respondError writes the status for err's kind.  Internal errors are logged
// and answered with fallback so no detail leaks to the client.
func respondError(c echo.Context, log *zap.Logger, op string, err error, fallback string) error {
    kind := service.KindOf(err)
    l := log.With(zap.String("operation", op), zap.String("request_id", middleware.RequestID(c)), zap.Error(err))
    switch kind {
    case service.KindValidation, service.KindConflict:
        l.Debug("request rejected", zap.Stringer("kind", kind))
        return c.JSON(http.StatusBadRequest, echo.Map{"error": errorMessage(err)})
    case service.KindNotFound:
        l.Debug("not found")
        return c.JSON(http.StatusNotFound, echo.Map{"error": errorMessage(err)})
    case service.KindAuth:
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": errorMessage(err)})
    default:
        l.Error("unexpected error")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
    }
}
