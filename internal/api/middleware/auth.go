package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/reqctx"
)

// Context keys set by Authenticate.
const (
	KeyPrincipal = "principal"
	KeyRole      = "role"
)

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateAccess(ctx context.Context, token string) (*domain.Principal, error)
}

// Authenticate lifts a valid bearer access token into the request: the
// principal is stored on the echo context and its id and role replace any
// X-User-ID on the request metadata. Missing or invalid tokens pass through
// anonymously; use RequireAuth to reject them.
func Authenticate(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request())
			if !ok {
				return next(c)
			}
			p, err := v.ValidateAccess(c.Request().Context(), token)
			if err != nil {
				return next(c)
			}

			if info := reqctx.From(c.Request().Context()); info != nil {
				info.UserID = p.UserID
				info.Role = p.Role
			}
			c.Set(KeyPrincipal, p)
			c.Set(KeyRole, p.Role)
			c.Response().Header().Set(HeaderUserID, p.UserID)
			return next(c)
		}
	}
}

// RequireAuth rejects requests without an authenticated principal.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(KeyPrincipal).(*domain.Principal); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}
