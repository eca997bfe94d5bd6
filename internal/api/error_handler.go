package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/user-management-api/internal/api/handler"
	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/service"
	"github.com/sirpyerre/user-management-api/pkg/logger"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the standard envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger, events ports.EventPublisher) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *handler.ValidationError
		if errors.As(err, &ve) {
			_ = handler.Fail(c, http.StatusBadRequest, handler.MsgValidationError, ve.Details)
			return
		}

		code, msg := resolveError(err, log, events, c)
		_ = handler.Fail(c, code, msg, nil)
	}
}

func resolveError(err error, log zerolog.Logger, events ports.EventPublisher, c echo.Context) (int, string) {
	var forced *domain.ForcedStatusError
	if errors.As(err, &forced) {
		return forced.Status, forced.Message
	}

	// Unmatched routes. Handlers raising their own 404 keep their message.
	if errors.Is(err, echo.ErrNotFound) {
		return http.StatusNotFound, handler.MsgRouteNotFound
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusInternalServerError {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.MsgResourceNotFound
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, handler.MsgValidationError
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, service.MsgUserNotFound
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusForbidden, service.MsgAccountLocked
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.MsgInvalidCredentials
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, handler.MsgInvalidToken
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.MsgForbidden
	}

	// Unexpected error: log the real cause, return a generic message.
	reqLog := logger.FromContextOr(c.Request().Context(), log)
	reqLog.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	events.Publish(c.Request().Context(), domain.EventErrorOccurred, map[string]any{
		"message": err.Error(),
		"method":  c.Request().Method,
		"path":    c.Path(),
	})

	return http.StatusInternalServerError, handler.MsgInternalError
}
