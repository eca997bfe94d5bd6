package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/user-management-api/internal/api/middleware"
	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a mock account and returns a token pair.
//
// @Summary      Login
// @Description  expectedResult of 400, 401, 403, 404, 500 or 503 forces that outcome when enabled.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=domain.LoginResult}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		UserName:       req.UserName,
		Password:       req.Password,
		ExpectedResult: req.ExpectedResult,
	})
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, res, "Login successful")
}

// Refresh exchanges a refresh token for a new token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  Envelope{data=domain.TokenPair}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil || req.RefreshToken == "" {
		return Fail(c, http.StatusBadRequest, "Refresh token is required", nil)
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if errors.Is(err, domain.ErrInvalidToken) {
		return Fail(c, http.StatusUnauthorized, "Invalid or expired refresh token", nil)
	}
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, pair, "Tokens refreshed successfully")
}

// Logout records the logout. Issued tokens stay valid until they expire.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		return err
	}
	return OK(c, http.StatusOK, nil, "Logout successful")
}

// Validate verifies the bearer access token.
//
// @Summary      Validate an access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=validateResponse}
// @Failure      401  {object}  Envelope
// @Router       /auth/validate [get]
func (h *AuthHandler) Validate(c echo.Context) error {
	token, ok := middleware.BearerToken(c.Request())
	if !ok {
		return Fail(c, http.StatusUnauthorized, "Authorization header is required", nil)
	}

	p, err := h.authService.ValidateAccess(c.Request().Context(), token)
	if errors.Is(err, domain.ErrInvalidToken) {
		return Fail(c, http.StatusUnauthorized, MsgInvalidToken, nil)
	}
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, validateResponse{Valid: true, User: *p}, "")
}
