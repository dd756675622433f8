package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/services"
)

// BorrowHandler handles borrow-history endpoints.
type BorrowHandler struct {
	borrow *services.BorrowService
}

// NewBorrowHandler creates a new borrow handler.
func NewBorrowHandler(borrow *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrow: borrow}
}

type borrowRequest struct {
	UserID string `json:"user_id"`
}

// Borrow handles POST /books/:id/borrow.
func (h *BorrowHandler) Borrow(c echo.Context) error {
	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "invalid request body"))
	}
	rec, err := h.borrow.Borrow(c.Request().Context(), req.UserID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.OK(rec))
}

// Return handles POST /books/:id/return.
func (h *BorrowHandler) Return(c echo.Context) error {
	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("invalid_query", "invalid request body"))
	}
	rec, err := h.borrow.Return(c.Request().Context(), req.UserID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(rec))
}

// History handles GET /users/:id/borrows.
func (h *BorrowHandler) History(c echo.Context) error {
	recs, err := h.borrow.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.OK(recs))
}

// RegisterRoutes registers borrow routes.
func (h *BorrowHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/books/:id/borrow", h.Borrow)
	g.POST("/books/:id/return", h.Return)
	g.GET("/users/:id/borrows", h.History)
}
