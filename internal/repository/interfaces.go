package repository

import (
	"context"

	"github.com/bookwise-discovery-api/internal/models"
)

// CatalogRepository defines the storage operations the search and
// recommendation core needs. Adapters exist for PostgreSQL, SQLite and an
// embedded Bleve index; the core depends only on this interface.
type CatalogRepository interface {
	// Search returns the books matching pred AND filters, ordered by rank.
	Search(ctx context.Context, pred Predicate, filters Filters, rank RankSpec, limit, offset int) ([]models.Book, error)

	// Count returns the total number of books matching pred AND filters.
	Count(ctx context.Context, pred Predicate, filters Filters) (int, error)

	// GetByID returns the book with the given identifier, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Book, error)

	// GetByTitlePrefix returns the first book whose title starts with text,
	// or ErrNotFound.
	GetByTitlePrefix(ctx context.Context, text string) (*models.Book, error)

	// IncrementViewCount bumps the view counter of one book. Best-effort;
	// callers treat a failure as non-fatal.
	IncrementViewCount(ctx context.Context, id string) error

	// Create, Update and Delete back the admin surface.
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id string) error

	// Stats aggregates catalog-wide statistics.
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

// BorrowRepository records borrow/return events for users.
type BorrowRepository interface {
	Borrow(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error)
	Return(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error)
}
