// Package bleve provides an in-process catalog adapter: records live in
// memory and full-text matching is served by an embedded Bleve index. It is
// used for small deployments that load the catalog from a JSON file at
// startup, and in tests.
package bleve

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/repository"
)

// CatalogRepository implements repository.CatalogRepository over an in-memory
// record set plus a Bleve full-text index.
type CatalogRepository struct {
	mu    sync.RWMutex
	books map[string]*models.Book
	order []string // insertion order, keeps ranking deterministic
	index bleve.Index
}

// NewCatalogRepository creates an empty in-process catalog.
func NewCatalogRepository() (*CatalogRepository, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so exact words
	// in queries match exact words in search text.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("search_text", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &CatalogRepository{
		books: make(map[string]*models.Book),
		index: index,
	}, nil
}

// Load bulk-indexes a catalog snapshot.
func (r *CatalogRepository) Load(ctx context.Context, books []models.Book) error {
	for i := range books {
		if err := r.Create(ctx, &books[i]); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the Bleve index.
func (r *CatalogRepository) Close() error {
	return r.index.Close()
}

// fullTextIDs runs the MatchFullText clauses against the Bleve index and
// returns the matched identifiers.
func (r *CatalogRepository) fullTextIDs(pred repository.Predicate) (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, c := range pred.Any {
		if c.Kind != repository.MatchFullText {
			continue
		}
		q := bleve.NewMatchQuery(c.Value)
		q.SetField("search_text")
		req := bleve.NewSearchRequest(q)
		req.Size = len(r.books)
		res, err := r.index.Search(req)
		if err != nil {
			return nil, fmt.Errorf("bleve search: %w", err)
		}
		for _, hit := range res.Hits {
			ids[hit.ID] = true
		}
	}
	return ids, nil
}

// matches reports whether a book satisfies the predicate and filters. The
// contains clauses are evaluated directly; full-text hits come in via ftIDs.
func matches(b *models.Book, pred repository.Predicate, filters repository.Filters, ftIDs map[string]bool) bool {
	if filters.Language != "" && b.Language != filters.Language {
		return false
	}
	if filters.Subject != "" && b.Subject != filters.Subject {
		return false
	}
	for _, c := range pred.Any {
		switch c.Kind {
		case repository.MatchContains:
			var field string
			switch c.Field {
			case repository.FieldTitle:
				field = b.Title
			case repository.FieldAuthor:
				field = b.Author
			case repository.FieldSubject:
				field = b.Subject
			case repository.FieldPublisher:
				field = b.Publisher
			case repository.FieldSearchText:
				field = b.SearchText
			}
			if strings.Contains(strings.ToLower(field), strings.ToLower(c.Value)) {
				return true
			}
		case repository.MatchFullText:
			if ftIDs[b.ID] {
				return true
			}
		}
	}
	return false
}

// ranked returns all matching books in tiered rank order.
func (r *CatalogRepository) ranked(pred repository.Predicate, filters repository.Filters, rank repository.RankSpec) ([]models.Book, error) {
	ftIDs, err := r.fullTextIDs(pred)
	if err != nil {
		return nil, err
	}

	var out []models.Book
	for _, id := range r.order {
		b := r.books[id]
		if matches(b, pred, filters, ftIDs) {
			out = append(out, *b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := repository.Tier(&out[i], rank), repository.Tier(&out[j], rank)
		if ti != tj {
			return ti < tj
		}
		if out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		return out[i].ViewCount > out[j].ViewCount
	})
	return out, nil
}

// Search returns one page of matching books in tiered rank order.
func (r *CatalogRepository) Search(ctx context.Context, pred repository.Predicate, filters repository.Filters, rank repository.RankSpec, limit, offset int) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all, err := r.ranked(pred, filters, rank)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []models.Book{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Count returns the number of books matching the identical predicate.
func (r *CatalogRepository) Count(ctx context.Context, pred repository.Predicate, filters repository.Filters) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ftIDs, err := r.fullTextIDs(pred)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, b := range r.books {
		if matches(b, pred, filters, ftIDs) {
			count++
		}
	}
	return count, nil
}

// GetByID returns one book by identifier.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

// GetByTitlePrefix returns the most popular book whose title starts with text.
func (r *CatalogRepository) GetByTitlePrefix(ctx context.Context, text string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *models.Book
	lower := strings.ToLower(text)
	for _, id := range r.order {
		b := r.books[id]
		if strings.HasPrefix(strings.ToLower(b.Title), lower) {
			if best == nil || b.Popularity > best.Popularity {
				best = b
			}
		}
	}
	if best == nil {
		return nil, models.ErrNotFound
	}
	copy := *best
	return &copy, nil
}

// IncrementViewCount bumps the view counter.
func (r *CatalogRepository) IncrementViewCount(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return models.ErrNotFound
	}
	b.ViewCount++
	return nil
}

// Create inserts a new catalog record and indexes its search text.
func (r *CatalogRepository) Create(ctx context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.books[book.ID]; exists {
		return fmt.Errorf("book %s already exists", book.ID)
	}
	copy := *book
	r.books[book.ID] = &copy
	r.order = append(r.order, book.ID)
	if err := r.index.Index(book.ID, map[string]interface{}{"search_text": book.SearchText}); err != nil {
		return fmt.Errorf("index book %s: %w", book.ID, err)
	}
	return nil
}

// Update replaces a catalog record and reindexes it.
func (r *CatalogRepository) Update(ctx context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.books[book.ID]
	if !ok {
		return models.ErrNotFound
	}
	copy := *book
	copy.ViewCount = old.ViewCount
	r.books[book.ID] = &copy
	if err := r.index.Index(book.ID, map[string]interface{}{"search_text": book.SearchText}); err != nil {
		return fmt.Errorf("reindex book %s: %w", book.ID, err)
	}
	return nil
}

// Delete removes a catalog record.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.books, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if err := r.index.Delete(id); err != nil {
		return fmt.Errorf("unindex book %s: %w", id, err)
	}
	return nil
}

// Stats aggregates catalog-wide statistics.
func (r *CatalogRepository) Stats(ctx context.Context) (*models.CatalogStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.CatalogStats{}
	byLang := make(map[string]int64)
	bySubject := make(map[string]int64)
	var all []models.Book
	for _, id := range r.order {
		b := r.books[id]
		stats.TotalBooks++
		if b.Available {
			stats.Available++
		}
		stats.TotalViews += b.ViewCount
		byLang[b.Language]++
		bySubject[b.Subject]++
		all = append(all, *b)
	}
	stats.ByLanguage = toCounts(byLang)
	stats.BySubject = toCounts(bySubject)

	sort.SliceStable(all, func(i, j int) bool { return all[i].ViewCount > all[j].ViewCount })
	if len(all) > 5 {
		all = all[:5]
	}
	stats.MostViewed = all
	return stats, nil
}

func toCounts(m map[string]int64) []models.SubjectCount {
	out := make([]models.SubjectCount, 0, len(m))
	for k, v := range m {
		out = append(out, models.SubjectCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
