package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// bindQuery binds query parameters into dst and validates it.
func bindQuery(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return invalidInput("query", err)
	}
	return c.Validate(dst)
}

// bindBody binds a JSON body into dst and validates it.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return invalidInput("body", err)
	}
	return c.Validate(dst)
}

// invalidInput turns a binding failure into a validation error so malformed
// input gets the same 400 envelope as a failed rule.
func invalidInput(field string, err error) *ValidationError {
	msg := field + " is malformed"
	var be *echo.BindingError
	if errors.As(err, &be) && be.Field != "" {
		field, msg = be.Field, be.Field+" has an invalid value"
	}
	return &ValidationError{Details: []FieldError{{Field: field, Message: msg}}}
}
