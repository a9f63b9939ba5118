package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shareit/internal/handler"
)

func registerBookings(g *echo.Group, h *handler.BookingHandler) {
	g.POST("/bookings", h.Create)
	g.GET("/bookings", h.ListMine)
	g.GET("/bookings/owner", h.ListOwned)
	g.GET("/bookings/:id", h.Get)
	g.PATCH("/bookings/:id", h.Approve)
}
