package bleve

import (
	"context"
	"sync"
	"time"

	"github.com/bookwise-discovery-api/internal/models"
)

// BorrowRepository keeps borrow records in memory, matching the in-process
// catalog backend.
type BorrowRepository struct {
	mu      sync.Mutex
	nextID  int64
	records []models.BorrowRecord
	catalog *CatalogRepository
}

// NewBorrowRepository creates an in-memory borrow repository bound to the
// in-process catalog.
func NewBorrowRepository(catalog *CatalogRepository) *BorrowRepository {
	return &BorrowRepository{nextID: 1, catalog: catalog}
}

// Borrow records a borrow event and marks the book unavailable.
func (r *BorrowRepository) Borrow(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := models.BorrowRecord{
		ID:         r.nextID,
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: time.Now().UTC().Format(time.RFC3339),
	}
	r.nextID++
	r.records = append(r.records, rec)
	r.setAvailable(bookID, false)
	return &rec, nil
}

// Return closes the user's oldest open borrow record for the book.
func (r *BorrowRepository) Return(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		rec := &r.records[i]
		if rec.UserID == userID && rec.BookID == bookID && rec.ReturnedAt == nil {
			now := time.Now().UTC().Format(time.RFC3339)
			rec.ReturnedAt = &now
			r.setAvailable(bookID, true)
			out := *rec
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

// ListByUser returns all borrow records of one user, most recent first.
func (r *BorrowRepository) ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.BorrowRecord{}
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *BorrowRepository) setAvailable(bookID string, available bool) {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	if b, ok := r.catalog.books[bookID]; ok {
		b.Available = available
	}
}
