package models

// Book represents a catalog record. Fields are immutable after import except
// Popularity and ViewCount, which are adjusted by curation and the read-path
// view increment respectively.
type Book struct {
	ID         string  `json:"id" db:"id"`
	Title      string  `json:"title" db:"title"`
	Author     string  `json:"author" db:"author"`
	Publisher  string  `json:"publisher" db:"publisher"`
	Subject    string  `json:"subject" db:"subject"`
	Language   string  `json:"language" db:"language"`
	Popularity float64 `json:"popularity" db:"popularity"`
	ViewCount  int64   `json:"view_count" db:"view_count"`
	Available  bool    `json:"available" db:"available"`
	// SearchText is a precomputed concatenation of the descriptive fields
	// used by the full-text clause of the search predicate.
	SearchText string `json:"-" db:"search_text"`
}

// BookInput is the payload for admin create/update operations.
type BookInput struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Publisher  string  `json:"publisher"`
	Subject    string  `json:"subject"`
	Language   string  `json:"language"`
	Popularity float64 `json:"popularity"`
	Available  *bool   `json:"available,omitempty"`
}

// BorrowRecord is one borrow/return event for a user and a book.
type BorrowRecord struct {
	ID         int64   `json:"id" db:"id"`
	UserID     string  `json:"user_id" db:"user_id"`
	BookID     string  `json:"book_id" db:"book_id"`
	BorrowedAt string  `json:"borrowed_at" db:"borrowed_at"`
	ReturnedAt *string `json:"returned_at,omitempty" db:"returned_at"`
}

// SubjectCount is one bucket of the per-subject/per-language aggregation.
type SubjectCount struct {
	Key   string `json:"key" db:"key"`
	Count int64  `json:"count" db:"count"`
}

// CatalogStats is the aggregate view of the catalog.
type CatalogStats struct {
	TotalBooks int64          `json:"total_books"`
	Available  int64          `json:"available"`
	ByLanguage []SubjectCount `json:"by_language"`
	BySubject  []SubjectCount `json:"by_subject"`
	MostViewed []Book         `json:"most_viewed"`
	TotalViews int64          `json:"total_views"`
}
