package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/repository"
)

// CatalogService covers item lookup, the read-path view increment, admin
// CRUD and statistics.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// GetBook looks up one book by identifier and bumps its view counter once,
// fire-and-forget. A failed increment never fails the lookup.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.incrementViews(book.ID)
	return book, nil
}

// GetBookByTitle looks up a book whose title starts with text.
func (s *CatalogService) GetBookByTitle(ctx context.Context, text string) (*models.Book, error) {
	return s.repo.GetByTitlePrefix(ctx, text)
}

func (s *CatalogService) incrementViews(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.IncrementViewCount(ctx, id); err != nil {
			s.logger.Warn("view count increment failed", zap.String("book_id", id), zap.Error(err))
		}
	}()
}

// Stats aggregates catalog-wide statistics.
func (s *CatalogService) Stats(ctx context.Context) (*models.CatalogStats, error) {
	return s.repo.Stats(ctx)
}

// CreateBook inserts a catalog record from admin input.
func (s *CatalogService) CreateBook(ctx context.Context, input models.BookInput) (*models.Book, error) {
	if input.ID == "" || strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: id and title are required", models.ErrInvalidQuery)
	}
	book := bookFromInput(input)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook replaces the descriptive fields of an existing record.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, input models.BookInput) (*models.Book, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidQuery)
	}
	input.ID = id
	book := bookFromInput(input)
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a catalog record.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func bookFromInput(input models.BookInput) *models.Book {
	available := true
	if input.Available != nil {
		available = *input.Available
	}
	book := &models.Book{
		ID:         input.ID,
		Title:      input.Title,
		Author:     input.Author,
		Publisher:  input.Publisher,
		Subject:    input.Subject,
		Language:   input.Language,
		Popularity: input.Popularity,
		Available:  available,
	}
	book.SearchText = BuildSearchText(book)
	return book
}

// BuildSearchText precomputes the full-text field from the descriptive
// fields.
func BuildSearchText(b *models.Book) string {
	return strings.Join([]string{b.Title, b.Author, b.Publisher, b.Subject}, " ")
}
