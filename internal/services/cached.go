package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/cache"
	"github.com/bookwise-discovery-api/internal/models"
)

// Operation-specific TTLs. Staleness inside these windows is accepted; there
// is no invalidation on catalog mutation.
const (
	searchTTL    = 5 * time.Minute
	recommendTTL = 10 * time.Minute
	bookTTL      = 60 * time.Minute
	statsTTL     = 30 * time.Minute
)

// CachedService wraps the read operations with read-through/write-through
// caching. A misbehaving store degrades to always-miss: every read
// recomputes, every write is a no-op, and no error reaches the caller.
//
// There is no single-flight guard: two concurrent requests for the same
// uncached key may both compute and both write, with the later write winning.
type CachedService struct {
	store     cache.Store
	search    *SearchService
	recommend *RecommendService
	catalog   *CatalogService
	logger    *zap.Logger
}

// NewCachedService creates the cache-aside coordinator.
func NewCachedService(store cache.Store, search *SearchService, recommend *RecommendService, catalog *CatalogService, logger *zap.Logger) *CachedService {
	return &CachedService{
		store:     store,
		search:    search,
		recommend: recommend,
		catalog:   catalog,
		logger:    logger,
	}
}

// Fingerprint derives a deterministic cache key from an operation name and
// its normalized parameters in a fixed order.
func Fingerprint(op string, params ...string) string {
	if len(params) == 0 {
		return op
	}
	return op + ":" + strings.Join(params, ":")
}

// Search memoizes SearchService.Search keyed by the canonical query and
// pagination/filter parameters.
func (c *CachedService) Search(ctx context.Context, req models.SearchRequest) (*models.CandidateSet, error) {
	canonical := strings.TrimSpace(req.Query)
	if canonical == "" {
		return nil, models.ErrInvalidQuery
	}
	q := models.SearchQuery{Page: req.Page, PageSize: req.PageSize}
	q.Clamp()
	key := Fingerprint("search", canonical,
		fmt.Sprint(q.Page), fmt.Sprint(q.PageSize), req.Language, req.Subject)

	return getOrCompute(ctx, c, "search", key, searchTTL, func() (*models.CandidateSet, error) {
		return c.search.Search(ctx, req)
	})
}

// Recommend memoizes RecommendService.RecommendQuery keyed by the canonical
// query and limit. Cached results are trusted as already validated.
func (c *CachedService) Recommend(ctx context.Context, query string, limit int) (*models.RecommendResult, error) {
	canonical := strings.TrimSpace(query)
	if canonical == "" {
		return nil, models.ErrInvalidQuery
	}
	if limit < 1 {
		limit = 5
	}
	key := Fingerprint("recommend", canonical, fmt.Sprint(limit))

	return getOrCompute(ctx, c, "recommend", key, recommendTTL, func() (*models.RecommendResult, error) {
		return c.recommend.RecommendQuery(ctx, canonical, limit)
	})
}

// GetBook memoizes the item-detail lookup keyed by identifier.
func (c *CachedService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	key := Fingerprint("book", id)
	return getOrCompute(ctx, c, "book", key, bookTTL, func() (*models.Book, error) {
		return c.catalog.GetBook(ctx, id)
	})
}

// GetBookByTitle memoizes the title-prefix lookup.
func (c *CachedService) GetBookByTitle(ctx context.Context, text string) (*models.Book, error) {
	key := Fingerprint("book", "title", text)
	return getOrCompute(ctx, c, "book", key, bookTTL, func() (*models.Book, error) {
		return c.catalog.GetBookByTitle(ctx, text)
	})
}

// Stats memoizes the statistics aggregation.
func (c *CachedService) Stats(ctx context.Context) (*models.CatalogStats, error) {
	key := Fingerprint("stats")
	return getOrCompute(ctx, c, "stats", key, statsTTL, func() (*models.CatalogStats, error) {
		return c.catalog.Stats(ctx)
	})
}

// getOrCompute is the cache-aside read path: check the store, on a hit
// return the cached value untouched, on a miss compute and write back. Store
// failures are logged and treated as misses.
func getOrCompute[T any](ctx context.Context, c *CachedService, op, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	var zero T

	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed, bypassing", zap.String("key", key), zap.Error(err))
		cache.ObserveMiss(op)
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err != nil {
			c.logger.Warn("cache entry undecodable, recomputing", zap.String("key", key), zap.Error(err))
			cache.ObserveMiss(op)
		} else {
			cache.ObserveHit(op)
			return cached, nil
		}
	} else {
		cache.ObserveMiss(op)
	}

	result, err := compute()
	if err != nil {
		return zero, err
	}

	if data, err := json.Marshal(result); err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
	} else if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}
