package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/normalize"
	"github.com/bookwise-discovery-api/internal/repository"
)

// SearchService retrieves ranked candidate pages from the catalog.
type SearchService struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(repo repository.CatalogRepository, logger *zap.Logger) *SearchService {
	return &SearchService{repo: repo, logger: logger}
}

// Search normalizes a raw request and retrieves the matching page.
func (s *SearchService) Search(ctx context.Context, req models.SearchRequest) (*models.CandidateSet, error) {
	canonical, variant, err := normalize.Normalize(req.Query)
	if err != nil {
		return nil, err
	}
	q := models.SearchQuery{
		Canonical: canonical,
		Variant:   variant,
		Page:      req.Page,
		PageSize:  req.PageSize,
		Language:  req.Language,
		Subject:   req.Subject,
	}
	q.Clamp()
	return s.Retrieve(ctx, q), nil
}

// Retrieve runs the row and count queries concurrently and assembles the
// candidate set. Catalog unavailability degrades to an empty set; it is
// logged, never surfaced as an error.
func (s *SearchService) Retrieve(ctx context.Context, q models.SearchQuery) *models.CandidateSet {
	q.Clamp()
	pred, filters, rank := repository.BuildSearchPredicate(q)
	offset := (q.Page - 1) * q.PageSize

	var (
		books []models.Book
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		books, err = s.repo.Search(gctx, pred, filters, rank, q.PageSize, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, pred, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("catalog search unavailable", zap.String("query", q.Canonical), zap.Error(err))
		return emptyCandidateSet(q)
	}

	return &models.CandidateSet{
		Items:    books,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		HasNext:  q.Page*q.PageSize < total,
		HasPrev:  q.Page > 1,
	}
}

func emptyCandidateSet(q models.SearchQuery) *models.CandidateSet {
	return &models.CandidateSet{
		Items:    []models.Book{},
		Total:    0,
		Page:     q.Page,
		PageSize: q.PageSize,
		HasNext:  false,
		HasPrev:  q.Page > 1,
	}
}
