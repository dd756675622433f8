package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/repository"
)

// fakeCatalogRepo is a programmable repository.CatalogRepository. Unset
// function fields return zero values.
type fakeCatalogRepo struct {
	searchFn func(pred repository.Predicate, filters repository.Filters, rank repository.RankSpec, limit, offset int) ([]models.Book, error)
	countFn  func(pred repository.Predicate, filters repository.Filters) (int, error)
	getFn    func(id string) (*models.Book, error)
	statsFn  func() (*models.CatalogStats, error)

	searchCalls atomic.Int64
	getCalls    atomic.Int64
	statsCalls  atomic.Int64
	viewBumps   atomic.Int64
}

func (f *fakeCatalogRepo) Search(ctx context.Context, pred repository.Predicate, filters repository.Filters, rank repository.RankSpec, limit, offset int) ([]models.Book, error) {
	f.searchCalls.Add(1)
	if f.searchFn == nil {
		return []models.Book{}, nil
	}
	return f.searchFn(pred, filters, rank, limit, offset)
}

func (f *fakeCatalogRepo) Count(ctx context.Context, pred repository.Predicate, filters repository.Filters) (int, error) {
	if f.countFn == nil {
		return 0, nil
	}
	return f.countFn(pred, filters)
}

func (f *fakeCatalogRepo) GetByID(ctx context.Context, id string) (*models.Book, error) {
	f.getCalls.Add(1)
	if f.getFn == nil {
		return nil, models.ErrNotFound
	}
	return f.getFn(id)
}

func (f *fakeCatalogRepo) GetByTitlePrefix(ctx context.Context, text string) (*models.Book, error) {
	return nil, models.ErrNotFound
}

func (f *fakeCatalogRepo) IncrementViewCount(ctx context.Context, id string) error {
	f.viewBumps.Add(1)
	return nil
}

func (f *fakeCatalogRepo) Create(ctx context.Context, book *models.Book) error { return nil }
func (f *fakeCatalogRepo) Update(ctx context.Context, book *models.Book) error { return nil }
func (f *fakeCatalogRepo) Delete(ctx context.Context, id string) error         { return nil }

func (f *fakeCatalogRepo) Stats(ctx context.Context) (*models.CatalogStats, error) {
	f.statsCalls.Add(1)
	if f.statsFn == nil {
		return &models.CatalogStats{}, nil
	}
	return f.statsFn()
}

// fakeCompletion is a programmable completion.Client.
type fakeCompletion struct {
	text  string
	err   error
	calls atomic.Int64
}

func (f *fakeCompletion) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

func sampleBook(id string) models.Book {
	return models.Book{ID: id, Title: "Title " + id, Author: "Author", Subject: "fiction", Available: true}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := NewSearchService(&fakeCatalogRepo{}, zap.NewNop())

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := svc.Search(context.Background(), models.SearchRequest{Query: q})
		if !errors.Is(err, models.ErrInvalidQuery) {
			t.Errorf("query %q: got %v, want ErrInvalidQuery", q, err)
		}
	}
}

func TestSearchClampsPagination(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{"zero values", 0, 0, 1, 1, 0},
		{"negative", -3, -10, 1, 1, 0},
		{"oversized page size", 1, 500, 1, models.MaxPageSize, 0},
		{"second page", 2, 10, 2, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit, gotOffset int
			repo := &fakeCatalogRepo{
				searchFn: func(_ repository.Predicate, _ repository.Filters, _ repository.RankSpec, limit, offset int) ([]models.Book, error) {
					gotLimit, gotOffset = limit, offset
					return []models.Book{}, nil
				},
			}
			svc := NewSearchService(repo, zap.NewNop())

			cs, err := svc.Search(context.Background(), models.SearchRequest{Query: "history", Page: tt.page, PageSize: tt.size})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if cs.Page != tt.wantPage || cs.PageSize != tt.wantPageSize {
				t.Errorf("page/size: got %d/%d, want %d/%d", cs.Page, cs.PageSize, tt.wantPage, tt.wantPageSize)
			}
			if gotLimit != tt.wantPageSize || gotOffset != tt.wantOffset {
				t.Errorf("limit/offset: got %d/%d, want %d/%d", gotLimit, gotOffset, tt.wantPageSize, tt.wantOffset)
			}
		})
	}
}

func TestSearchPageFlags(t *testing.T) {
	repo := &fakeCatalogRepo{
		searchFn: func(_ repository.Predicate, _ repository.Filters, _ repository.RankSpec, limit, offset int) ([]models.Book, error) {
			return []models.Book{sampleBook("b1")}, nil
		},
		countFn: func(repository.Predicate, repository.Filters) (int, error) { return 25, nil },
	}
	svc := NewSearchService(repo, zap.NewNop())

	cs, err := svc.Search(context.Background(), models.SearchRequest{Query: "history", Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !cs.HasNext {
		t.Error("HasNext: got false, want true (page 2 of 25 at size 10)")
	}
	if !cs.HasPrev {
		t.Error("HasPrev: got false, want true")
	}
	if cs.Total != 25 {
		t.Errorf("Total: got %d, want 25", cs.Total)
	}
}

func TestSearchDegradesToEmptyOnRepoFailure(t *testing.T) {
	repo := &fakeCatalogRepo{
		searchFn: func(_ repository.Predicate, _ repository.Filters, _ repository.RankSpec, _, _ int) ([]models.Book, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewSearchService(repo, zap.NewNop())

	cs, err := svc.Search(context.Background(), models.SearchRequest{Query: "history"})
	if err != nil {
		t.Fatalf("repo failure must not surface: %v", err)
	}
	if len(cs.Items) != 0 || cs.Total != 0 || cs.HasNext {
		t.Errorf("got non-empty set %+v, want empty", cs)
	}
}

func TestSearchNormalizesScript(t *testing.T) {
	var gotRank repository.RankSpec
	repo := &fakeCatalogRepo{
		searchFn: func(_ repository.Predicate, _ repository.Filters, rank repository.RankSpec, _, _ int) ([]models.Book, error) {
			gotRank = rank
			return []models.Book{}, nil
		},
	}
	svc := NewSearchService(repo, zap.NewNop())

	if _, err := svc.Search(context.Background(), models.SearchRequest{Query: "  小說  "}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotRank.Canonical != "小說" {
		t.Errorf("canonical: got %q, want %q", gotRank.Canonical, "小說")
	}
	if gotRank.Variant != "小说" {
		t.Errorf("variant: got %q, want %q", gotRank.Variant, "小说")
	}
}
