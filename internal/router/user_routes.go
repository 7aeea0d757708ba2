package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventease/internal/middleware"
	"github.com/iliyamo/eventease/internal/model"
)

// RegisterUser registers the booking endpoints.  Both roles may call them;
// the handlers restrict non-admins to their own user id.
func RegisterUser(e *echo.Echo, d Deps) {
	member := []echo.MiddlewareFunc{
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}
	// rate limiting runs after JWTAuth so buckets can be keyed per user
	writes := append(member[:len(member):len(member)], d.orPass(d.RateLimit), d.orPass(d.Invalidate))

	g := e.Group("/events")
	g.POST("/book/:id", d.Bookings.Book, writes...)
	g.DELETE("/cancel/:bookingId", d.Bookings.Cancel, writes...)
	g.GET("/bookings/:userId", d.Bookings.ListForUser, member...)
}
