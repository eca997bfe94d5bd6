package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/user-management-api/internal/core/query"
	"github.com/sirpyerre/user-management-api/internal/core/reqctx"
)

// Canned envelope messages.
const (
	MsgValidationError  = "Validation error"
	MsgResourceNotFound = "Resource not found"
	MsgRouteNotFound    = "Route not found"
	MsgInternalError    = "Internal server error"
	MsgUnauthorized     = "Unauthorized access"
	MsgForbidden        = "Access forbidden"
	MsgInvalidToken     = "Invalid or expired token"
)

// Envelope is the response shape for every endpoint.
type Envelope struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Error      string       `json:"error,omitempty"`
	Message    string       `json:"message,omitempty"`
	Details    []FieldError `json:"details,omitempty"`
	Pagination *query.Page  `json:"pagination,omitempty"`
	Timestamp  string       `json:"timestamp"`
	RequestID  string       `json:"requestId"`
}

func newEnvelope(c echo.Context, success bool) Envelope {
	return Envelope{
		Success:   success,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RequestID: reqctx.RequestID(c.Request().Context()),
	}
}

// OK writes a success envelope.
func OK(c echo.Context, status int, data any, message string) error {
	env := newEnvelope(c, true)
	env.Data = data
	env.Message = message
	return c.JSON(status, env)
}

// Paged writes a success envelope with pagination metadata.
func Paged(c echo.Context, data any, page query.Page) error {
	env := newEnvelope(c, true)
	env.Data = data
	env.Pagination = &page
	return c.JSON(200, env)
}

// Fail writes an error envelope.
func Fail(c echo.Context, status int, errMsg string, details []FieldError) error {
	env := newEnvelope(c, false)
	env.Error = errMsg
	env.Details = details
	return c.JSON(status, env)
}
