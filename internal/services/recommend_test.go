package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/models"
)

func candidateSet(n int) *models.CandidateSet {
	items := make([]models.Book, n)
	for i := range items {
		items[i] = sampleBook(fmt.Sprintf("b%d", i+1))
	}
	return &models.CandidateSet{Items: items, Total: n, Page: 1, PageSize: 20}
}

func TestRecommendEmptyCandidates(t *testing.T) {
	client := &fakeCompletion{}
	svc := NewRecommendService(nil, client, zap.NewNop())

	got := svc.Recommend(context.Background(), "history", &models.CandidateSet{Items: []models.Book{}}, 5)
	if got.Summary != noResultsSummary {
		t.Errorf("summary: got %q", got.Summary)
	}
	if len(got.Recommendations) != 0 {
		t.Errorf("recommendations: got %d, want 0", len(got.Recommendations))
	}
	if client.calls.Load() != 0 {
		t.Error("completion service called for an empty candidate set")
	}
}

func TestRecommendValidationGate(t *testing.T) {
	// The completion response invents "phantom" and "b99"; only the offered
	// ids may survive.
	client := &fakeCompletion{text: `{"summary": "Picks for you.", "recommendations": [
		{"id": "phantom", "title": "Invented", "reason": "x"},
		{"id": "b2", "title": "Title b2", "reason": "strong match"},
		{"id": "b99", "title": "Also invented", "reason": "x"},
		{"id": "b1", "title": "Title b1", "reason": "classic"}]}`}
	svc := NewRecommendService(nil, client, zap.NewNop())

	got := svc.Recommend(context.Background(), "history", candidateSet(3), 5)
	if len(got.Recommendations) != 2 {
		t.Fatalf("recommendations: got %d, want 2", len(got.Recommendations))
	}
	if got.Recommendations[0].ID != "b2" || got.Recommendations[1].ID != "b1" {
		t.Errorf("ids: got %s, %s", got.Recommendations[0].ID, got.Recommendations[1].ID)
	}
	if got.Summary != "Picks for you." {
		t.Errorf("summary: got %q", got.Summary)
	}
}

func TestRecommendPartiallyValidOutput(t *testing.T) {
	// One known id and one invented id with room to spare: the single valid
	// pick survives, nothing is padded in.
	client := &fakeCompletion{text: `{"summary": "s", "recommendations": [
		{"id": "ghost", "reason": "x"}, {"id": "b1", "reason": "good fit"}]}`}
	svc := NewRecommendService(nil, client, zap.NewNop())

	got := svc.Recommend(context.Background(), "history", candidateSet(3), 5)
	if len(got.Recommendations) != 1 || got.Recommendations[0].ID != "b1" {
		t.Errorf("got %+v, want exactly [b1]", got.Recommendations)
	}
}

func TestRecommendTruncatesToLimit(t *testing.T) {
	client := &fakeCompletion{text: `{"summary": "s", "recommendations": [
		{"id": "b1"}, {"id": "b2"}, {"id": "b3"}, {"id": "b4"}]}`}
	svc := NewRecommendService(nil, client, zap.NewNop())

	got := svc.Recommend(context.Background(), "history", candidateSet(4), 2)
	if len(got.Recommendations) != 2 {
		t.Errorf("got %d recommendations, want 2", len(got.Recommendations))
	}
}

func TestRecommendFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeCompletion
	}{
		{"upstream error", &fakeCompletion{err: errors.New("dial tcp: timeout")}},
		{"non-json output", &fakeCompletion{text: "I recommend you read more books."}},
		{"all ids invented", &fakeCompletion{text: `{"summary": "s", "recommendations": [{"id": "nope"}]}`}},
		{"empty recommendation list", &fakeCompletion{text: `{"summary": "s", "recommendations": []}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRecommendService(nil, tt.client, zap.NewNop())

			got := svc.Recommend(context.Background(), "history", candidateSet(8), 5)
			if got.Summary != fallbackSummary {
				t.Errorf("summary: got %q, want fallback", got.Summary)
			}
			if len(got.Recommendations) != 5 {
				t.Fatalf("recommendations: got %d, want 5", len(got.Recommendations))
			}
			// Fallback preserves retrieval order.
			for i, rec := range got.Recommendations {
				want := fmt.Sprintf("b%d", i+1)
				if rec.ID != want {
					t.Errorf("rec %d: got id %s, want %s", i, rec.ID, want)
				}
				if rec.Reason == "" {
					t.Errorf("rec %d: empty reason", i)
				}
			}
		})
	}
}

func TestRecommendParsesFencedJSON(t *testing.T) {
	client := &fakeCompletion{text: "Sure! Here are my picks:\n```json\n" +
		`{"summary": "Fenced.", "recommendations": [{"id": "b1", "reason": "r"}]}` +
		"\n```\nEnjoy!"}
	svc := NewRecommendService(nil, client, zap.NewNop())

	got := svc.Recommend(context.Background(), "history", candidateSet(2), 5)
	if got.Summary != "Fenced." {
		t.Errorf("summary: got %q, want %q", got.Summary, "Fenced.")
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].ID != "b1" {
		t.Errorf("recommendations: got %+v", got.Recommendations)
	}
}

func TestRecommendPromptBoundsCandidates(t *testing.T) {
	system, user := buildRecommendPrompt("history", candidateSet(40).Items)
	if strings.Contains(user, "id=b21") {
		t.Error("prompt contains candidate past the offer limit")
	}
	if !strings.Contains(user, "id=b20") {
		t.Error("prompt missing the last offered candidate")
	}
	if !strings.Contains(system, "never invent") {
		t.Error("system prompt missing the no-invention instruction")
	}
}

func TestRecommendQueryRejectsEmpty(t *testing.T) {
	svc := NewRecommendService(NewSearchService(&fakeCatalogRepo{}, zap.NewNop()), &fakeCompletion{}, zap.NewNop())

	_, err := svc.RecommendQuery(context.Background(), "   ", 5)
	if !errors.Is(err, models.ErrInvalidQuery) {
		t.Errorf("got %v, want ErrInvalidQuery", err)
	}
}

func TestAnswer(t *testing.T) {
	book := sampleBook("b1")

	t.Run("trims upstream text", func(t *testing.T) {
		svc := NewRecommendService(nil, &fakeCompletion{text: "  A fine book.  \n"}, zap.NewNop())
		if got := svc.Answer(context.Background(), &book, "what is it about?"); got != "A fine book." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("empty on upstream failure", func(t *testing.T) {
		svc := NewRecommendService(nil, &fakeCompletion{err: errors.New("boom")}, zap.NewNop())
		if got := svc.Answer(context.Background(), &book, "what is it about?"); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"prose {\"a\": 1} trailing", `{"a": 1}`},
		{"no json at all", "no json at all"},
		{"nested {\"a\": {\"b\": 2}} end", `{"a": {"b": 2}}`},
	}
	for _, tt := range tests {
		if got := string(extractJSON(tt.in)); got != tt.want {
			t.Errorf("extractJSON(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
