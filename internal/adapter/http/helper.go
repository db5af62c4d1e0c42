package http

import (
	"github.com/labstack/echo/v4"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
)

// ---- helpers ----

// bindValid binds the request into req, lets prepare normalise it, then validates.
func bindValid(c echo.Context, req any, prepare func()) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("Invalid request body", nil)
	}
	if prepare != nil {
		prepare()
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}
	return nil
}
