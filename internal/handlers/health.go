package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the catalog backend is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	backend string
	pinger  Pinger
}

// NewHealthHandler creates a new health handler. pinger may be nil for
// backends without a connection to probe.
func NewHealthHandler(backend string, pinger Pinger) *HealthHandler {
	return &HealthHandler{backend: backend, pinger: pinger}
}

// HealthResponse is the response for the basic health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Backend: h.backend,
	})
}

// BackendHealth handles GET /health/backend.
func (h *HealthHandler) BackendHealth(c echo.Context) error {
	if h.pinger == nil {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "embedded",
			"backend": h.backend,
		})
	}
	if err := h.pinger.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "connected",
		"backend": h.backend,
	})
}

// RegisterRoutes registers health check routes.
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/backend", h.BackendHealth)
}
