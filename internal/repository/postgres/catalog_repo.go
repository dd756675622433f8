package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/repository"
)

// CatalogRepository implements repository.CatalogRepository for PostgreSQL.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new PostgreSQL catalog repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const bookColumns = "id, title, author, publisher, subject, language, popularity, view_count, available, search_text"

// buildWhere translates a predicate plus filters into a WHERE fragment with
// positional args, starting at $1.
func buildWhere(pred repository.Predicate, filters repository.Filters) (string, []interface{}) {
	var ors []string
	var args []interface{}

	for _, c := range pred.Any {
		switch c.Kind {
		case repository.MatchContains:
			args = append(args, "%"+c.Value+"%")
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", c.Field, len(args)))
		case repository.MatchFullText:
			args = append(args, c.Value)
			ors = append(ors, fmt.Sprintf("to_tsvector('simple', search_text) @@ plainto_tsquery('simple', $%d)", len(args)))
		}
	}

	where := "(" + strings.Join(ors, " OR ") + ")"
	if filters.Language != "" {
		args = append(args, filters.Language)
		where += fmt.Sprintf(" AND language = $%d", len(args))
	}
	if filters.Subject != "" {
		args = append(args, filters.Subject)
		where += fmt.Sprintf(" AND subject = $%d", len(args))
	}
	return where, args
}

// buildOrder translates the rank spec into the tiered ORDER BY clause. Within
// the lowest tier no tie-break beyond popularity and view count is applied.
func buildOrder(rank repository.RankSpec, args []interface{}) (string, []interface{}) {
	canonical := "%" + rank.Canonical + "%"
	variant := canonical
	if rank.Variant != "" && rank.Variant != rank.Canonical {
		variant = "%" + rank.Variant + "%"
	}
	args = append(args, canonical)
	c := len(args)
	args = append(args, variant)
	v := len(args)

	order := fmt.Sprintf(`ORDER BY CASE
		WHEN title ILIKE $%[1]d OR title ILIKE $%[2]d THEN 0
		WHEN author ILIKE $%[1]d OR author ILIKE $%[2]d THEN 1
		WHEN subject ILIKE $%[1]d OR subject ILIKE $%[2]d THEN 2
		ELSE 3
	END, popularity DESC, view_count DESC`, c, v)
	return order, args
}

// Search returns matching books in tiered rank order.
func (r *CatalogRepository) Search(ctx context.Context, pred repository.Predicate, filters repository.Filters, rank repository.RankSpec, limit, offset int) ([]models.Book, error) {
	where, args := buildWhere(pred, filters)
	order, args := buildOrder(rank, args)

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf("SELECT %s FROM books WHERE %s %s LIMIT $%d OFFSET $%d",
		bookColumns, where, order, limitPos, offsetPos)

	var books []models.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// Count returns the number of books matching the identical predicate.
func (r *CatalogRepository) Count(ctx context.Context, pred repository.Predicate, filters repository.Filters) (int, error) {
	where, args := buildWhere(pred, filters)
	query := "SELECT COUNT(*) FROM books WHERE " + where

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

// GetByID returns one book by identifier.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns)
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return &book, nil
}

// GetByTitlePrefix returns the first book whose title starts with text.
func (r *CatalogRepository) GetByTitlePrefix(ctx context.Context, text string) (*models.Book, error) {
	var book models.Book
	query := fmt.Sprintf("SELECT %s FROM books WHERE title ILIKE $1 || '%%' ORDER BY popularity DESC LIMIT 1", bookColumns)
	if err := r.db.GetContext(ctx, &book, query, text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get book by title prefix: %w", err)
	}
	return &book, nil
}

// IncrementViewCount bumps the view counter using a single-row atomic update.
func (r *CatalogRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE books SET view_count = view_count + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("increment view count for %s: %w", id, err)
	}
	return nil
}

// Create inserts a new catalog record.
func (r *CatalogRepository) Create(ctx context.Context, book *models.Book) error {
	query := `INSERT INTO books (id, title, author, publisher, subject, language, popularity, view_count, available, search_text)
		VALUES (:id, :title, :author, :publisher, :subject, :language, :popularity, :view_count, :available, :search_text)`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a catalog record.
func (r *CatalogRepository) Update(ctx context.Context, book *models.Book) error {
	query := `UPDATE books SET title = :title, author = :author, publisher = :publisher,
		subject = :subject, language = :language, popularity = :popularity,
		available = :available, search_text = :search_text WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, book)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a catalog record.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Stats aggregates catalog-wide statistics.
func (r *CatalogRepository) Stats(ctx context.Context) (*models.CatalogStats, error) {
	stats := &models.CatalogStats{}

	if err := r.db.GetContext(ctx, &stats.TotalBooks, "SELECT COUNT(*) FROM books"); err != nil {
		return nil, fmt.Errorf("stats total: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.Available, "SELECT COUNT(*) FROM books WHERE available"); err != nil {
		return nil, fmt.Errorf("stats available: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalViews, "SELECT COALESCE(SUM(view_count), 0) FROM books"); err != nil {
		return nil, fmt.Errorf("stats views: %w", err)
	}
	if err := r.db.SelectContext(ctx, &stats.ByLanguage,
		"SELECT language AS key, COUNT(*) AS count FROM books GROUP BY language ORDER BY count DESC"); err != nil {
		return nil, fmt.Errorf("stats by language: %w", err)
	}
	if err := r.db.SelectContext(ctx, &stats.BySubject,
		"SELECT subject AS key, COUNT(*) AS count FROM books GROUP BY subject ORDER BY count DESC"); err != nil {
		return nil, fmt.Errorf("stats by subject: %w", err)
	}
	query := fmt.Sprintf("SELECT %s FROM books ORDER BY view_count DESC LIMIT 5", bookColumns)
	if err := r.db.SelectContext(ctx, &stats.MostViewed, query); err != nil {
		return nil, fmt.Errorf("stats most viewed: %w", err)
	}
	return stats, nil
}
