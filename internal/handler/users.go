package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/service"
)

type UserAPI interface {
	Create(ctx context.Context, in service.NewUser) (*model.User, error)
	Get(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id uint64, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id uint64) error
}

type UserHandler struct {
	svc UserAPI
	log zerolog.Logger
}

func NewUserHandler(svc UserAPI, log zerolog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

type createUserReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

type updateUserReq struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// POST /v1/users
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.svc.Create(ctx, service.NewUser{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toUser(u))
}

// GET /v1/users
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	us, err := h.svc.List(ctx)
	if err != nil {
		return fail(c, h.log, err)
	}
	out := make([]userResp, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.svc.Get(ctx, id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toUser(u))
}

// PATCH /v1/users/:id
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	var req updateUserReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.svc.Update(ctx, id, model.UserPatch{Name: req.Name, Email: req.Email})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toUser(u))
}

// DELETE /v1/users/:id
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
