package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/config"
	"github.com/iliyamo/shareit/internal/model"
	"github.com/iliyamo/shareit/internal/utils"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
}

// AuthHandler issues access tokens for registered users.
type AuthHandler struct {
	cfg   config.Config
	users Authenticator
	log   zerolog.Logger
}

func NewAuthHandler(cfg config.Config, users Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users, log: log}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	User   userResp  `json:"user"`
	Access tokenPart `json:"access"`
}

// POST /v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.users.Authenticate(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}
	access, err := utils.NewAccessToken(h.cfg.JWTSecret, u.ID, h.cfg.AccessTTLMin, time.Now())
	if err != nil {
		h.log.Error().Err(err).Uint64("user_id", u.ID).Msg("issue access token failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, loginResp{
		User:   toUser(u),
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
