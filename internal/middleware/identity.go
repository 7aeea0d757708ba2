package middleware

// identity.go defines the context keys JWTAuth fills and the accessors
// that handlers and the other middleware use to read them.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

const (
    ctxUserID    = "user_id"
    ctxRole      = "role"
    ctxRequestID = "request_id"
)

// UserID returns the authenticated user's id.  ok is false on routes that
// are not behind JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// Role returns the authenticated user's role claim.
func Role(c echo.Context) (string, bool) {
    role, ok := c.Get(ctxRole).(string)
    return role, ok && role != ""
}

// SetIdentity stores a user id and role the way JWTAuth does.  Handler tests
// use it to simulate an authenticated request.
func SetIdentity(c echo.Context, userID uint64, role string) {
    c.Set(ctxUserID, userID)
    c.Set(ctxRole, role)
}

// RequestID returns the id RequestLogger assigned to this request.
func RequestID(c echo.Context) string {
    s, _ := c.Get(ctxRequestID).(string)
    return s
}

// userKey is the rate limiter's notion of who is calling.  Unauthenticated
// requests share the "anon" bucket per IP.
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
