package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/services"
)

// SearchHandler handles search and recommendation endpoints.
type SearchHandler struct {
	cached *services.CachedService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(cached *services.CachedService) *SearchHandler {
	return &SearchHandler{cached: cached}
}

// Search handles POST /search - ranked catalog search.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "invalid request body"))
	}

	result, err := h.cached.Search(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// Recommend handles POST /recommend - curated recommendations for a query.
func (h *SearchHandler) Recommend(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RecommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "invalid request body"))
	}

	result, err := h.cached.Recommend(ctx, req.Query, req.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// RegisterRoutes registers search routes.
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/search", h.Search)
	g.POST("/recommend", h.Recommend)
}
