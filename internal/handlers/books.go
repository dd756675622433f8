package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/services"
)

// BookHandler handles item detail, single-item Q&A and the admin CRUD
// surface.
type BookHandler struct {
	cached    *services.CachedService
	catalog   *services.CatalogService
	recommend *services.RecommendService
}

// NewBookHandler creates a new book handler.
func NewBookHandler(cached *services.CachedService, catalog *services.CatalogService, recommend *services.RecommendService) *BookHandler {
	return &BookHandler{cached: cached, catalog: catalog, recommend: recommend}
}

// Get handles GET /books/:id - cached item detail.
func (h *BookHandler) Get(c echo.Context) error {
	book, err := h.cached.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(book))
}

// GetByTitle handles GET /books/by-title/:text - cached title-prefix lookup.
func (h *BookHandler) GetByTitle(c echo.Context) error {
	text := strings.TrimSpace(c.Param("text"))
	if text == "" {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "title is required"))
	}
	book, err := h.cached.GetBookByTitle(c.Request().Context(), text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(book))
}

// Ask handles POST /books/:id/ask - single-item question answering. An
// unavailable completion service degrades to a generic description, not an
// error.
func (h *BookHandler) Ask(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "invalid request body"))
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "question is required"))
	}

	book, err := h.catalog.GetBook(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	answer := h.recommend.Answer(ctx, book, req.Question)
	if answer == "" {
		answer = services.GenericDescription(book)
	}
	return c.JSON(http.StatusOK, models.OK(models.AskResult{Answer: answer, Book: *book}))
}

// Create handles POST /books - admin create.
func (h *BookHandler) Create(c echo.Context) error {
	var input models.BookInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "invalid request body"))
	}
	book, err := h.catalog.CreateBook(c.Request().Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.OK(book))
}

// Update handles PUT /books/:id - admin update.
func (h *BookHandler) Update(c echo.Context) error {
	var input models.BookInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "invalid request body"))
	}
	book, err := h.catalog.UpdateBook(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(book))
}

// Delete handles DELETE /books/:id - admin delete.
func (h *BookHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(map[string]string{"status": "deleted"}))
}

// RegisterRoutes registers book routes.
func (h *BookHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/books/:id", h.Get)
	g.GET("/books/by-title/:text", h.GetByTitle)
	g.POST("/books/:id/ask", h.Ask)
	g.POST("/books", h.Create)
	g.PUT("/books/:id", h.Update)
	g.DELETE("/books/:id", h.Delete)
}
