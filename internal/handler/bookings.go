package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/service"
)

// BookingAPI is the booking engine as seen by HTTP.
type BookingAPI interface {
	Create(ctx context.Context, userID uint64, in service.NewBooking) (*model.Booking, error)
	Approve(ctx context.Context, userID, bookingID uint64, approved bool) (*model.Booking, error)
	GetByID(ctx context.Context, userID, bookingID uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64, state model.BookingState) ([]*model.Booking, error)
	ListByOwner(ctx context.Context, userID uint64, state model.BookingState) ([]*model.Booking, error)
}

type BookingHandler struct {
	svc BookingAPI
	log zerolog.Logger
}

func NewBookingHandler(svc BookingAPI, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

type createBookingReq struct {
	ItemID uint64     `json:"itemId" validate:"required"`
	Start  *timestamp `json:"start"`
	End    *timestamp `json:"end"`
}

// POST /v1/bookings
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.svc.Create(ctx, uid, service.NewBooking{ItemID: req.ItemID, Start: req.Start.ptr(), End: req.End.ptr()})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toBooking(b))
}

// PATCH /v1/bookings/:id?approved=true|false
func (h *BookingHandler) Approve(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	approved, err := strconv.ParseBool(c.QueryParam("approved"))
	if err != nil {
		return fail(c, h.log, apperr.Validation("approved must be true or false"))
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.svc.Approve(ctx, uid, id, approved)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toBooking(b))
}

// GET /v1/bookings/:id
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.svc.GetByID(ctx, uid, id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toBooking(b))
}

// GET /v1/bookings?state=
func (h *BookingHandler) ListMine(c echo.Context) error {
	return h.list(c, h.svc.ListByUser)
}

// GET /v1/bookings/owner?state=
func (h *BookingHandler) ListOwned(c echo.Context) error {
	return h.list(c, h.svc.ListByOwner)
}

func (h *BookingHandler) list(c echo.Context, fetch func(context.Context, uint64, model.BookingState) ([]*model.Booking, error)) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	state, err := service.ParseState(c.QueryParam("state"))
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := fetch(ctx, uid, state)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toBookings(out))
}
