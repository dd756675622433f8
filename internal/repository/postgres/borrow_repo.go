package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bookwise-discovery-api/internal/models"
)

// BorrowRepository implements repository.BorrowRepository for PostgreSQL.
type BorrowRepository struct {
	db *sqlx.DB
}

// NewBorrowRepository creates a new PostgreSQL borrow repository.
func NewBorrowRepository(db *sqlx.DB) *BorrowRepository {
	return &BorrowRepository{db: db}
}

// Borrow records a borrow event and marks the book unavailable.
func (r *BorrowRepository) Borrow(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	query := `INSERT INTO borrows (user_id, book_id, borrowed_at)
		VALUES ($1, $2, NOW())
		RETURNING id, user_id, book_id, borrowed_at::text, returned_at::text`
	if err := r.db.GetContext(ctx, &rec, query, userID, bookID); err != nil {
		return nil, fmt.Errorf("borrow book: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE books SET available = FALSE WHERE id = $1", bookID); err != nil {
		return nil, fmt.Errorf("mark unavailable: %w", err)
	}
	return &rec, nil
}

// Return closes the user's open borrow record for the book and marks the book
// available again.
func (r *BorrowRepository) Return(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	query := `UPDATE borrows SET returned_at = NOW()
		WHERE id = (
			SELECT id FROM borrows
			WHERE user_id = $1 AND book_id = $2 AND returned_at IS NULL
			ORDER BY borrowed_at LIMIT 1
		)
		RETURNING id, user_id, book_id, borrowed_at::text, returned_at::text`
	if err := r.db.GetContext(ctx, &rec, query, userID, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("return book: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE books SET available = TRUE WHERE id = $1", bookID); err != nil {
		return nil, fmt.Errorf("mark available: %w", err)
	}
	return &rec, nil
}

// ListByUser returns all borrow records of one user, most recent first.
func (r *BorrowRepository) ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	var recs []models.BorrowRecord
	query := `SELECT id, user_id, book_id, borrowed_at::text, returned_at::text
		FROM borrows WHERE user_id = $1 ORDER BY borrowed_at DESC`
	if err := r.db.SelectContext(ctx, &recs, query, userID); err != nil {
		return nil, fmt.Errorf("list borrows for %s: %w", userID, err)
	}
	if recs == nil {
		recs = []models.BorrowRecord{}
	}
	return recs, nil
}
