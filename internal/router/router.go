// Package router registers the HTTP surface on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/shareit/internal/handler"
	"github.com/iliyamo/shareit/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Items    *handler.ItemHandler
	Bookings *handler.BookingHandler
	Requests *handler.RequestHandler
	Health   echo.HandlerFunc
}

// Options carries the middleware wired around groups.
type Options struct {
	Identity  middleware.IdentityConfig
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
	// Invalidate runs on item writes and must pair with Cache.
	Invalidate echo.MiddlewareFunc
}

// Register mounts every route. Identity runs on all /v1 routes so the rate
// limiter can key on the acting user; items, bookings and requests also
// require one.
func Register(e *echo.Echo, h Handlers, opts Options) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1", middleware.Identity(opts.Identity))
	if opts.RateLimit != nil {
		v1.Use(opts.RateLimit)
	}

	v1.POST("/auth/login", h.Auth.Login)
	registerUsers(v1, h.Users)

	authed := v1.Group("", middleware.RequireUser())
	registerItems(authed, h.Items, opts.Cache, opts.Invalidate)
	registerBookings(authed, h.Bookings)
	registerRequests(authed, h.Requests)
}

func registerUsers(g *echo.Group, u *handler.UserHandler) {
	g.POST("/users", u.Create)
	g.GET("/users", u.List)
	g.GET("/users/:id", u.Get)
	g.PATCH("/users/:id", u.Update)
	g.DELETE("/users/:id", u.Delete)
}
