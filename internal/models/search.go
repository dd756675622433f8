package models

// MaxPageSize bounds the page size of any catalog search.
const MaxPageSize = 50

// SearchQuery is a normalized catalog search request.
type SearchQuery struct {
	// Canonical is the trimmed user query; Variant is the script-normalized
	// form and equals Canonical when no substitution applied.
	Canonical string `json:"query"`
	Variant   string `json:"variant,omitempty"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Language  string `json:"language,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// Clamp forces the pagination fields into their valid ranges.
func (q *SearchQuery) Clamp() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// SearchRequest is the raw request body for POST /search.
type SearchRequest struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Language string `json:"language,omitempty"`
	Subject  string `json:"subject,omitempty"`
}

// CandidateSet is an ordered page of catalog matches for one SearchQuery.
type CandidateSet struct {
	Items    []Book `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	HasNext  bool   `json:"has_next"`
	HasPrev  bool   `json:"has_prev"`
}

// IDs returns the identifiers of the candidates in order.
func (cs *CandidateSet) IDs() []string {
	ids := make([]string, len(cs.Items))
	for i, b := range cs.Items {
		ids[i] = b.ID
	}
	return ids
}
