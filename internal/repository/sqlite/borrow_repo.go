package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bookwise-discovery-api/internal/models"
)

// BorrowRepository implements repository.BorrowRepository for SQLite.
type BorrowRepository struct {
	db *sqlx.DB
}

// NewBorrowRepository creates a new SQLite borrow repository.
func NewBorrowRepository(db *sqlx.DB) *BorrowRepository {
	return &BorrowRepository{db: db}
}

// Borrow records a borrow event and marks the book unavailable.
func (r *BorrowRepository) Borrow(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO borrows (user_id, book_id, borrowed_at) VALUES (?, ?, datetime('now'))",
		userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("borrow book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("borrow book id: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE books SET available = 0 WHERE id = ?", bookID); err != nil {
		return nil, fmt.Errorf("mark unavailable: %w", err)
	}
	return r.get(ctx, id)
}

// Return closes the user's open borrow record for the book.
func (r *BorrowRepository) Return(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		"SELECT id FROM borrows WHERE user_id = ? AND book_id = ? AND returned_at IS NULL ORDER BY borrowed_at LIMIT 1",
		userID, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find open borrow: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE borrows SET returned_at = datetime('now') WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("return book: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE books SET available = 1 WHERE id = ?", bookID); err != nil {
		return nil, fmt.Errorf("mark available: %w", err)
	}
	return r.get(ctx, id)
}

// ListByUser returns all borrow records of one user, most recent first.
func (r *BorrowRepository) ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	var recs []models.BorrowRecord
	query := "SELECT id, user_id, book_id, borrowed_at, returned_at FROM borrows WHERE user_id = ? ORDER BY borrowed_at DESC"
	if err := r.db.SelectContext(ctx, &recs, query, userID); err != nil {
		return nil, fmt.Errorf("list borrows for %s: %w", userID, err)
	}
	if recs == nil {
		recs = []models.BorrowRecord{}
	}
	return recs, nil
}

func (r *BorrowRepository) get(ctx context.Context, id int64) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	query := "SELECT id, user_id, book_id, borrowed_at, returned_at FROM borrows WHERE id = ?"
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, fmt.Errorf("get borrow %d: %w", id, err)
	}
	return &rec, nil
}
