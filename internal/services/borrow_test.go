package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/models"
)

type fakeBorrowRepo struct {
	borrowCalls int
}

func (f *fakeBorrowRepo) Borrow(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	f.borrowCalls++
	return &models.BorrowRecord{ID: 1, UserID: userID, BookID: bookID}, nil
}

func (f *fakeBorrowRepo) Return(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	return nil, models.ErrNotFound
}

func (f *fakeBorrowRepo) ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	return []models.BorrowRecord{}, nil
}

func TestBorrowChecksAvailability(t *testing.T) {
	available := sampleBook("b1")
	unavailable := sampleBook("b2")
	unavailable.Available = false

	catalog := &fakeCatalogRepo{
		getFn: func(id string) (*models.Book, error) {
			switch id {
			case "b1":
				return &available, nil
			case "b2":
				return &unavailable, nil
			}
			return nil, models.ErrNotFound
		},
	}
	borrows := &fakeBorrowRepo{}
	svc := NewBorrowService(borrows, catalog, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Borrow(ctx, "u1", "b1"); err != nil {
		t.Fatalf("available book: %v", err)
	}
	if borrows.borrowCalls != 1 {
		t.Errorf("borrow calls: got %d, want 1", borrows.borrowCalls)
	}

	if _, err := svc.Borrow(ctx, "u1", "b2"); !errors.Is(err, models.ErrInvalidQuery) {
		t.Errorf("unavailable book: got %v, want ErrInvalidQuery", err)
	}
	if _, err := svc.Borrow(ctx, "u1", "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing book: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Borrow(ctx, "", "b1"); !errors.Is(err, models.ErrInvalidQuery) {
		t.Errorf("empty user: got %v, want ErrInvalidQuery", err)
	}
	if borrows.borrowCalls != 1 {
		t.Errorf("rejected borrows reached the repository: %d calls", borrows.borrowCalls)
	}
}

func TestReturnRequiresUser(t *testing.T) {
	svc := NewBorrowService(&fakeBorrowRepo{}, &fakeCatalogRepo{}, zap.NewNop())

	if _, err := svc.Return(context.Background(), "", "b1"); !errors.Is(err, models.ErrInvalidQuery) {
		t.Errorf("got %v, want ErrInvalidQuery", err)
	}
	if _, err := svc.Return(context.Background(), "u1", "b1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("no open record: got %v, want ErrNotFound", err)
	}
}
