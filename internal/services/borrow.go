package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/repository"
)

// BorrowService keeps user borrowing history.
type BorrowService struct {
	borrows repository.BorrowRepository
	catalog repository.CatalogRepository
	logger  *zap.Logger
}

// NewBorrowService creates a new borrow service.
func NewBorrowService(borrows repository.BorrowRepository, catalog repository.CatalogRepository, logger *zap.Logger) *BorrowService {
	return &BorrowService{borrows: borrows, catalog: catalog, logger: logger}
}

// Borrow records a borrow event for an available book.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidQuery)
	}
	book, err := s.catalog.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.Available {
		return nil, fmt.Errorf("%w: book %s is not available", models.ErrInvalidQuery, bookID)
	}
	return s.borrows.Borrow(ctx, userID, bookID)
}

// Return closes the user's open borrow record for the book.
func (s *BorrowService) Return(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidQuery)
	}
	return s.borrows.Return(ctx, userID, bookID)
}

// History returns the user's borrow records, most recent first.
func (s *BorrowService) History(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	return s.borrows.ListByUser(ctx, userID)
}
