package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventease/internal/middleware"
	"github.com/iliyamo/eventease/internal/model"
)

// RegisterAdmin registers admin-scoped endpoints.  All routes require a
// valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, d Deps) {
	admin := []echo.MiddlewareFunc{
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	}
	writes := append(admin[:len(admin):len(admin)], d.orPass(d.Invalidate))

	g := e.Group("/events")
	g.POST("", d.Events.Create, writes...)
	g.PUT("/:id", d.Events.Update, writes...)
	g.DELETE("/:id", d.Events.Delete, writes...)
	g.GET("/:id/attendees", d.Bookings.ListAttendees, admin...)
}
