package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator hook so
// handlers can call c.Validate on bound DTOs. Validation failures are
// surfaced as 400 responses carrying the first offending field.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the shared validator instance. Struct tags on
// the request DTOs define the rules; nothing is registered manually
// except what the tags express.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
