package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/service"
)

type ItemAPI interface {
	Create(ctx context.Context, ownerID uint64, in service.NewItem) (*model.Item, error)
	Update(ctx context.Context, userID, itemID uint64, patch model.ItemPatch) (*model.Item, error)
	GetDetail(ctx context.Context, userID, itemID uint64) (*service.ItemDetail, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]*service.ItemDetail, error)
	Search(ctx context.Context, text string) ([]*model.Item, error)
}

type CommentAPI interface {
	AddComment(ctx context.Context, userID, itemID uint64, text string) (*model.Comment, error)
}

type ItemHandler struct {
	items    ItemAPI
	comments CommentAPI
	log      zerolog.Logger
}

func NewItemHandler(items ItemAPI, comments CommentAPI, log zerolog.Logger) *ItemHandler {
	return &ItemHandler{items: items, comments: comments, log: log}
}

type createItemReq struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Available   *bool   `json:"available" validate:"required"`
	RequestID   *uint64 `json:"requestId"`
}

type updateItemReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type commentReq struct {
	Text string `json:"text"`
}

// POST /v1/items
func (h *ItemHandler) Create(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req createItemReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	it, err := h.items.Create(ctx, uid, service.NewItem{
		Name: req.Name, Description: req.Description, Available: *req.Available, RequestID: req.RequestID,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toItem(it))
}

// PATCH /v1/items/:id
func (h *ItemHandler) Update(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	var req updateItemReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	it, err := h.items.Update(ctx, uid, id, model.ItemPatch{Name: req.Name, Description: req.Description, Available: req.Available})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toItem(it))
}

// GET /v1/items/:id
func (h *ItemHandler) Get(c echo.Context) error {
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

	d, err := h.items.GetDetail(ctx, uid, id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toItemDetail(d))
}

// GET /v1/items
func (h *ItemHandler) ListMine(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ds, err := h.items.ListByOwner(ctx, uid)
	if err != nil {
		return fail(c, h.log, err)
	}
	out := make([]itemDetailResp, 0, len(ds))
	for _, d := range ds {
		out = append(out, toItemDetail(d))
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/items/search?text=
func (h *ItemHandler) Search(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	its, err := h.items.Search(ctx, c.QueryParam("text"))
	if err != nil {
		return fail(c, h.log, err)
	}
	out := make([]itemResp, 0, len(its))
	for _, it := range its {
		out = append(out, toItem(it))
	}
	return c.JSON(http.StatusOK, out)
}

// POST /v1/items/:id/comment
func (h *ItemHandler) Comment(c echo.Context) error {
	uid, err := actingUser(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	var req commentReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.comments.AddComment(ctx, uid, id, req.Text)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toComment(cm))
}
