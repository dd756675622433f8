package repository

import (
	"strings"

	"github.com/bookwise-discovery-api/internal/models"
)

// Field names a searchable column of the catalog.
type Field string

const (
	FieldTitle      Field = "title"
	FieldAuthor     Field = "author"
	FieldSubject    Field = "subject"
	FieldPublisher  Field = "publisher"
	FieldSearchText Field = "search_text"
)

// ClauseKind tags how a clause matches its field.
type ClauseKind int

const (
	// MatchContains is a case-insensitive substring match.
	MatchContains ClauseKind = iota
	// MatchFullText applies the backend's full-text operator to the
	// precomputed search-text field.
	MatchFullText
)

// Clause is one alternative of a search predicate.
type Clause struct {
	Kind  ClauseKind
	Field Field
	Value string
}

// Predicate matches a book when ANY of its clauses matches. Adapters
// translate it to their native query form.
type Predicate struct {
	Any []Clause
}

// Filters are equality constraints ANDed onto the predicate.
type Filters struct {
	Language string
	Subject  string
}

// RankSpec carries the query terms the tiered ranking is computed from.
// Ordering is: field-match tier ascending, then popularity descending, then
// view count descending.
type RankSpec struct {
	Canonical string
	Variant   string
}

// matchFields are the clause targets of a standard catalog search, in tier
// order.
var matchFields = []Field{FieldTitle, FieldAuthor, FieldSubject, FieldPublisher}

// BuildSearchPredicate expands a normalized query into the OR-of-clauses
// predicate used by the candidate retriever: a contains clause per field for
// the canonical query and, when distinct, the variant, plus a full-text
// clause for the canonical query.
func BuildSearchPredicate(q models.SearchQuery) (Predicate, Filters, RankSpec) {
	var pred Predicate
	for _, f := range matchFields {
		pred.Any = append(pred.Any, Clause{Kind: MatchContains, Field: f, Value: q.Canonical})
		if q.Variant != "" && q.Variant != q.Canonical {
			pred.Any = append(pred.Any, Clause{Kind: MatchContains, Field: f, Value: q.Variant})
		}
	}
	pred.Any = append(pred.Any, Clause{Kind: MatchFullText, Field: FieldSearchText, Value: q.Canonical})

	filters := Filters{Language: q.Language, Subject: q.Subject}
	rank := RankSpec{Canonical: q.Canonical, Variant: q.Variant}
	return pred, filters, rank
}

// Tier numbers, best (lowest) first.
const (
	TierTitle = iota
	TierAuthor
	TierSubject
	TierOther
)

// Tier returns the best field-match tier a book qualifies for under the rank
// spec. Books matched only via publisher or the full-text field fall into
// TierOther.
func Tier(b *models.Book, rank RankSpec) int {
	if containsFold(b.Title, rank.Canonical) || containsFold(b.Title, rank.Variant) {
		return TierTitle
	}
	if containsFold(b.Author, rank.Canonical) || containsFold(b.Author, rank.Variant) {
		return TierAuthor
	}
	if containsFold(b.Subject, rank.Canonical) || containsFold(b.Subject, rank.Variant) {
		return TierSubject
	}
	return TierOther
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
