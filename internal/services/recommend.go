package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/completion"
	"github.com/bookwise-discovery-api/internal/models"
	"github.com/bookwise-discovery-api/internal/normalize"
)

const (
	// promptCandidateLimit bounds how many candidates are offered to the
	// completion service.
	promptCandidateLimit = 20

	recommendTimeout = 30 * time.Second
	answerTimeout    = 20 * time.Second

	noResultsSummary = "No matching books were found for this query."
	fallbackSummary  = "Top catalog matches for your query."
)

// RecommendService curates recommendations from a candidate set via the
// external completion service. The service's output is untrusted: only
// recommendations whose identifiers exist in the offered candidate pool are
// ever surfaced.
type RecommendService struct {
	search *SearchService
	client completion.Client
	logger *zap.Logger
}

// NewRecommendService creates a new recommendation service.
func NewRecommendService(search *SearchService, client completion.Client, logger *zap.Logger) *RecommendService {
	return &RecommendService{search: search, client: client, logger: logger}
}

// RecommendQuery normalizes the query, retrieves candidates and curates
// recommendations.
func (s *RecommendService) RecommendQuery(ctx context.Context, query string, limit int) (*models.RecommendResult, error) {
	canonical, variant, err := normalize.Normalize(query)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 5
	}
	q := models.SearchQuery{
		Canonical: canonical,
		Variant:   variant,
		Page:      1,
		PageSize:  promptCandidateLimit,
	}
	candidates := s.search.Retrieve(ctx, q)
	return s.Recommend(ctx, canonical, candidates, limit), nil
}

// Recommend invokes the completion service over the candidate set and
// validates its picks. Upstream failure, malformed output or an empty
// validated list all fall back to the leading candidates; the caller always
// gets a structurally valid result.
func (s *RecommendService) Recommend(ctx context.Context, query string, candidates *models.CandidateSet, limit int) *models.RecommendResult {
	if len(candidates.Items) == 0 {
		return &models.RecommendResult{
			Summary:         noResultsSummary,
			Recommendations: []models.Recommendation{},
		}
	}

	result, err := s.generate(ctx, query, candidates, limit)
	if err != nil {
		s.logger.Warn("recommendation generation failed, using fallback",
			zap.String("query", query), zap.Error(err))
		return fallbackResult(candidates, limit)
	}
	return result
}

// generate performs the single upstream round trip and applies the
// validation gate.
func (s *RecommendService) generate(ctx context.Context, query string, candidates *models.CandidateSet, limit int) (*models.RecommendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, recommendTimeout)
	defer cancel()

	system, user := buildRecommendPrompt(query, candidates.Items)
	text, err := s.client.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}

	var parsed models.RecommendResult
	if err := json.Unmarshal(extractJSON(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparseable completion: %v", models.ErrUpstreamUnavailable, err)
	}

	// Validation gate: drop any pick whose id is outside the offered pool.
	known := make(map[string]bool, len(candidates.Items))
	for _, b := range candidates.Items {
		known[b.ID] = true
	}
	valid := make([]models.Recommendation, 0, len(parsed.Recommendations))
	for _, rec := range parsed.Recommendations {
		if !known[rec.ID] {
			s.logger.Debug("dropping recommendation with unknown id", zap.String("id", rec.ID))
			continue
		}
		valid = append(valid, rec)
		if len(valid) == limit {
			break
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no valid recommendations in completion", models.ErrUpstreamUnavailable)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		summary = fallbackSummary
	}
	return &models.RecommendResult{Summary: summary, Recommendations: valid}, nil
}

// Answer asks the completion service a question about a single book. Only
// the book's own fields are offered; other catalog records are never in the
// prompt. Upstream failure yields an empty answer.
func (s *RecommendService) Answer(ctx context.Context, book *models.Book, question string) string {
	ctx, cancel := context.WithTimeout(ctx, answerTimeout)
	defer cancel()

	system := "You are a librarian answering questions about a single book. " +
		"Answer briefly using only the book details provided. If the details do not " +
		"answer the question, say so."
	user := fmt.Sprintf("Book: %s by %s (%s, subject: %s, language: %s).\nQuestion: %s",
		book.Title, book.Author, book.Publisher, book.Subject, book.Language, question)

	text, err := s.client.Complete(ctx, system, user)
	if err != nil {
		s.logger.Warn("question answering failed", zap.String("book_id", book.ID), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

// GenericDescription is the caller-side substitute when Answer returns
// nothing.
func GenericDescription(book *models.Book) string {
	return fmt.Sprintf("%s is a %s book by %s, published by %s.",
		book.Title, book.Subject, book.Author, book.Publisher)
}

func buildRecommendPrompt(query string, candidates []models.Book) (system, user string) {
	if len(candidates) > promptCandidateLimit {
		candidates = candidates[:promptCandidateLimit]
	}

	var sb strings.Builder
	for i, b := range candidates {
		fmt.Fprintf(&sb, "%d. id=%s title=%q author=%q subject=%q popularity=%.1f\n",
			i+1, b.ID, b.Title, b.Author, b.Subject, b.Popularity)
	}

	system = `You are a librarian recommending books. Select the best matches for the reader's query STRICTLY from the numbered candidate list; never invent a book or an id. Respond with a single JSON object of the form {"summary": string, "recommendations": [{"id": string, "title": string, "author": string, "subject": string, "reason": string}]} and nothing else.`
	user = fmt.Sprintf("Reader query: %s\n\nCandidates:\n%s", query, sb.String())
	return system, user
}

// fallbackResult synthesizes recommendations from the leading candidates in
// their existing order. No external call is retried.
func fallbackResult(candidates *models.CandidateSet, limit int) *models.RecommendResult {
	items := candidates.Items
	if len(items) > limit {
		items = items[:limit]
	}
	recs := make([]models.Recommendation, len(items))
	for i, b := range items {
		recs[i] = models.Recommendation{
			ID:      b.ID,
			Title:   b.Title,
			Author:  b.Author,
			Subject: b.Subject,
			Reason:  fmt.Sprintf("A frequently read title in %s.", b.Subject),
		}
	}
	return &models.RecommendResult{Summary: fallbackSummary, Recommendations: recs}
}

// extractJSON returns the innermost slice of text spanning the first '{' to
// the last '}'. Completion services often wrap JSON in prose or code fences.
func extractJSON(text string) []byte {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return []byte(text)
	}
	return []byte(text[start : end+1])
}
