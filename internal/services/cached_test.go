package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/cache"
	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/repository"
)

// mapStore is an always-available cache.Store over a plain map.
type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *mapStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *mapStore) Close() error { return nil }

func (s *mapStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (brokenStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("store down")
}

func (brokenStore) Close() error { return nil }

func newCachedFixture(store cache.Store, repo *fakeCatalogRepo, client *fakeCompletion) *CachedService {
	logger := zap.NewNop()
	search := NewSearchService(repo, logger)
	recommend := NewRecommendService(search, client, logger)
	catalog := NewCatalogService(repo, logger)
	return NewCachedService(store, search, recommend, catalog, logger)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("search", "history", "1", "10", "", "")
	b := Fingerprint("search", "history", "1", "10", "", "")
	if a != b {
		t.Errorf("same inputs differ: %q vs %q", a, b)
	}
	if a == Fingerprint("search", "history", "2", "10", "", "") {
		t.Error("different page collides")
	}
	if Fingerprint("stats") != "stats" {
		t.Errorf("got %q", Fingerprint("stats"))
	}
}

func TestCachedSearchRoundTrip(t *testing.T) {
	repo := &fakeCatalogRepo{
		searchFn: func(_ repository.Predicate, _ repository.Filters, _ repository.RankSpec, _, _ int) ([]models.Book, error) {
			return []models.Book{sampleBook("b1"), sampleBook("b2")}, nil
		},
		countFn: func(repository.Predicate, repository.Filters) (int, error) { return 2, nil },
	}
	svc := newCachedFixture(newMapStore(), repo, &fakeCompletion{})
	req := models.SearchRequest{Query: "history", Page: 1, PageSize: 10}

	first, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("first Search: %v", err)
	}
	second, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs:\nfirst  %+v\nsecond %+v", first, second)
	}
	if got := repo.searchCalls.Load(); got != 1 {
		t.Errorf("repo search calls: got %d, want 1", got)
	}
}

func TestCachedSearchKeyCoversParameters(t *testing.T) {
	store := newMapStore()
	repo := &fakeCatalogRepo{}
	svc := newCachedFixture(store, repo, &fakeCompletion{})
	ctx := context.Background()

	reqs := []models.SearchRequest{
		{Query: "history", Page: 1, PageSize: 10},
		{Query: "history", Page: 2, PageSize: 10},
		{Query: "history", Page: 1, PageSize: 20},
		{Query: "history", Page: 1, PageSize: 10, Language: "zh"},
		{Query: "history", Page: 1, PageSize: 10, Subject: "fiction"},
	}
	for _, req := range reqs {
		if _, err := svc.Search(ctx, req); err != nil {
			t.Fatalf("Search %+v: %v", req, err)
		}
	}
	if got := len(store.keys()); got != len(reqs) {
		t.Errorf("distinct keys: got %d, want %d (keys %v)", got, len(reqs), store.keys())
	}
	if got := repo.searchCalls.Load(); got != int64(len(reqs)) {
		t.Errorf("repo search calls: got %d, want %d", got, len(reqs))
	}
}

func TestCachedSearchBrokenStoreBypasses(t *testing.T) {
	repo := &fakeCatalogRepo{
		searchFn: func(_ repository.Predicate, _ repository.Filters, _ repository.RankSpec, _, _ int) ([]models.Book, error) {
			return []models.Book{sampleBook("b1")}, nil
		},
		countFn: func(repository.Predicate, repository.Filters) (int, error) { return 1, nil },
	}
	svc := newCachedFixture(brokenStore{}, repo, &fakeCompletion{})
	req := models.SearchRequest{Query: "history"}

	for i := 0; i < 3; i++ {
		cs, err := svc.Search(context.Background(), req)
		if err != nil {
			t.Fatalf("call %d: store failure surfaced: %v", i, err)
		}
		if len(cs.Items) != 1 {
			t.Fatalf("call %d: got %d items, want 1", i, len(cs.Items))
		}
	}
	if got := repo.searchCalls.Load(); got != 3 {
		t.Errorf("repo search calls: got %d, want 3 (every read recomputes)", got)
	}
}

func TestCachedSearchRejectsEmptyQuery(t *testing.T) {
	svc := newCachedFixture(newMapStore(), &fakeCatalogRepo{}, &fakeCompletion{})

	_, err := svc.Search(context.Background(), models.SearchRequest{Query: "  "})
	if !errors.Is(err, models.ErrInvalidQuery) {
		t.Errorf("got %v, want ErrInvalidQuery", err)
	}
}

func TestCachedRecommendRoundTrip(t *testing.T) {
	repo := &fakeCatalogRepo{
		searchFn: func(_ repository.Predicate, _ repository.Filters, _ repository.RankSpec, _, _ int) ([]models.Book, error) {
			return []models.Book{sampleBook("b1")}, nil
		},
		countFn: func(repository.Predicate, repository.Filters) (int, error) { return 1, nil },
	}
	client := &fakeCompletion{text: `{"summary": "s", "recommendations": [{"id": "b1", "reason": "r"}]}`}
	svc := newCachedFixture(newMapStore(), repo, client)

	first, err := svc.Recommend(context.Background(), "history", 5)
	if err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	second, err := svc.Recommend(context.Background(), "history", 5)
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs")
	}
	if got := client.calls.Load(); got != 1 {
		t.Errorf("completion calls: got %d, want 1", got)
	}
}

func TestCachedGetBookAndStats(t *testing.T) {
	book := sampleBook("b1")
	repo := &fakeCatalogRepo{
		getFn:   func(id string) (*models.Book, error) { return &book, nil },
		statsFn: func() (*models.CatalogStats, error) { return &models.CatalogStats{TotalBooks: 7}, nil },
	}
	svc := newCachedFixture(newMapStore(), repo, &fakeCompletion{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := svc.GetBook(ctx, "b1")
		if err != nil {
			t.Fatalf("GetBook: %v", err)
		}
		if got.ID != "b1" {
			t.Errorf("got id %s", got.ID)
		}
	}
	if got := repo.getCalls.Load(); got != 1 {
		t.Errorf("repo get calls: got %d, want 1", got)
	}

	for i := 0; i < 2; i++ {
		stats, err := svc.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if stats.TotalBooks != 7 {
			t.Errorf("total books: got %d", stats.TotalBooks)
		}
	}
	if got := repo.statsCalls.Load(); got != 1 {
		t.Errorf("repo stats calls: got %d, want 1", got)
	}
}

func TestCachedErrorsAreNotCached(t *testing.T) {
	store := newMapStore()
	repo := &fakeCatalogRepo{
		getFn: func(id string) (*models.Book, error) { return nil, models.ErrNotFound },
	}
	svc := newCachedFixture(store, repo, &fakeCompletion{})

	if _, err := svc.GetBook(context.Background(), "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if got := len(store.keys()); got != 0 {
		t.Errorf("error result was cached: keys %v", store.keys())
	}
}

func TestCachedTTLsPerOperation(t *testing.T) {
	book := sampleBook("b1")
	repo := &fakeCatalogRepo{
		getFn:   func(id string) (*models.Book, error) { return &book, nil },
		statsFn: func() (*models.CatalogStats, error) { return &models.CatalogStats{}, nil },
	}
	client := &fakeCompletion{text: `{"summary": "s", "recommendations": [{"id": "b1"}]}`}
	store := newMapStore()
	repo.searchFn = func(_ repository.Predicate, _ repository.Filters, _ repository.RankSpec, _, _ int) ([]models.Book, error) {
		return []models.Book{sampleBook("b1")}, nil
	}
	repo.countFn = func(repository.Predicate, repository.Filters) (int, error) { return 1, nil }
	svc := newCachedFixture(store, repo, client)
	ctx := context.Background()

	if _, err := svc.Search(ctx, models.SearchRequest{Query: "q"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Recommend(ctx, "q", 5); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetBook(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Stats(ctx); err != nil {
		t.Fatal(err)
	}

	want := map[string]time.Duration{
		"search":    5 * time.Minute,
		"recommend": 10 * time.Minute,
		"book":      60 * time.Minute,
		"stats":     30 * time.Minute,
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	for key, ttl := range store.ttls {
		op, _, _ := strings.Cut(key, ":")
		if want[op] != ttl {
			t.Errorf("key %s: ttl %v, want %v", key, ttl, want[op])
		}
	}
}
