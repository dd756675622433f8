package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/services"
)

// StatsHandler handles the catalog statistics endpoint.
type StatsHandler struct {
	cached *services.CachedService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(cached *services.CachedService) *StatsHandler {
	return &StatsHandler{cached: cached}
}

// Stats handles GET /stats - cached catalog statistics.
func (h *StatsHandler) Stats(c echo.Context) error {
	stats, err := h.cached.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(stats))
}

// RegisterRoutes registers stats routes.
func (h *StatsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/stats", h.Stats)
}
