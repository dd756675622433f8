package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookwise-discovery-api/internal/models"
)

// respondError maps the error taxonomy to the envelope. Only invalid input
// and missing records surface as failures; everything else is an internal
// error without detail leakage.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", err.Error()))
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.Fail("not_found", "record not found"))
	default:
		return c.JSON(http.StatusInternalServerError, models.Fail("internal", "internal error"))
	}
}
