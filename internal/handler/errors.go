package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/apperr"
	"github.com/iliyamo/shareit/internal/middleware"
)

const requestTimeout = 5 * time.Second

// statusOf maps an error kind onto an HTTP status.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAvailability, apperr.KindStatus, apperr.KindValidation,
		apperr.KindComment, apperr.KindUnsupportedState:
		return http.StatusBadRequest
	case apperr.KindAccessDenied:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": message}. Uncategorized errors are logged
// and their text is never sent to the client.
func fail(c echo.Context, log zerolog.Logger, err error) error {
	kind := apperr.KindOf(err)
	status := statusOf(kind)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.Path()).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("request failed")
	}
	return c.JSON(status, echo.Map{"error": apperr.MessageOf(err)})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// actingUser returns the user resolved by the identity middleware.
func actingUser(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperr.Unauthorized("missing identity")
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}
