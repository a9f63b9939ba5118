package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/service"
)

type RequestAPI interface {
	Create(ctx context.Context, userID uint64, description string) (*service.RequestView, error)
	GetAllSelf(ctx context.Context, userID uint64) ([]*service.RequestView, error)
	GetByID(ctx context.Context, requestID uint64) (*service.RequestView, error)
	GetAllOthers(ctx context.Context, userID uint64, from, size int) (*service.RequestPage, error)
}

type RequestHandler struct {
	svc RequestAPI
	log zerolog.Logger
}

func NewRequestHandler(svc RequestAPI, log zerolog.Logger) *RequestHandler {
	return &RequestHandler{svc: svc, log: log}
}

type createRequestReq struct {
	Description string `json:"description" validate:"required"`
}

type requestPageResp struct {
	Content []requestResp `json:"content"`
	Total   int64         `json:"totalElements"`
	From    int           `json:"from"`
	Size    int           `json:"size"`
}

// POST /v1/requests
func (h *RequestHandler) Create(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req createRequestReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.svc.Create(ctx, uid, req.Description)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toRequest(v))
}

// GET /v1/requests
func (h *RequestHandler) ListMine(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	vs, err := h.svc.GetAllSelf(ctx, uid)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toRequests(vs))
}

// GET /v1/requests/all?from=&size=
func (h *RequestHandler) ListAll(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	from, err := intQuery(c, "from", 0)
	if err != nil {
		return fail(c, h.log, err)
	}
	size, err := intQuery(c, "size", 10)
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	page, err := h.svc.GetAllOthers(ctx, uid, from, size)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, requestPageResp{
		Content: toRequests(page.Requests), Total: page.Total, From: page.From, Size: page.Size,
	})
}

// GET /v1/requests/:id
func (h *RequestHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.svc.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toRequest(v))
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	return n, nil
}
