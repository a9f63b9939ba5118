package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shareit/internal/handler"
)

func registerItems(g *echo.Group, h *handler.ItemHandler, cache, invalidate echo.MiddlewareFunc) {
	var searchMW, writeMW []echo.MiddlewareFunc
	if cache != nil {
		searchMW = append(searchMW, cache)
	}
	if invalidate != nil {
		writeMW = append(writeMW, invalidate)
	}
	g.POST("/items", h.Create, writeMW...)
	g.GET("/items", h.ListMine)
	g.GET("/items/search", h.Search, searchMW...)
	g.GET("/items/:id", h.Get)
	g.PATCH("/items/:id", h.Update, writeMW...)
	g.POST("/items/:id/comment", h.Comment)
}

func registerRequests(g *echo.Group, h *handler.RequestHandler) {
	g.POST("/requests", h.Create)
	g.GET("/requests", h.ListMine)
	g.GET("/requests/all", h.ListAll)
	g.GET("/requests/:id", h.Get)
}
