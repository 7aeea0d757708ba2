package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventease/internal/handler"
)

// Deps bundles the handlers and the optional Redis-backed middlewares the
// routes are built from.  Nil middlewares are treated as pass-through.
type Deps struct {
	Auth     *handler.AuthHandler
	Events   *handler.EventHandler
	Bookings *handler.BookingHandler
	DB       handler.Pinger

	JWTSecret string

	RateLimit  echo.MiddlewareFunc // token bucket on auth and booking writes
	Cache      echo.MiddlewareFunc // response cache for GET /events
	Invalidate echo.MiddlewareFunc // drops cached listings after writes
}

func (d Deps) orPass(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}

// RegisterRoutes wires every endpoint onto e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	RegisterPublic(e, d)
	RegisterAdmin(e, d)
	RegisterUser(e, d)
}

// RegisterPublic registers the routes that need no session: health, the
// auth endpoints and the event listing.
func RegisterPublic(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))

	g := e.Group("/auth")
	g.POST("/register", d.Auth.Register, d.orPass(d.RateLimit))
	g.POST("/login", d.Auth.Login, d.orPass(d.RateLimit))

	e.GET("/events", d.Events.List, d.orPass(d.Cache))
	e.GET("/events/:id", d.Events.Get, d.orPass(d.Cache))
}
