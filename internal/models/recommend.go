package models

// Recommendation is one curated pick. ID always refers to a book that was
// present in the candidate set the recommendation was computed against.
type Recommendation struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

// RecommendRequest is the request body for POST /recommend.
type RecommendRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// RecommendResult is the orchestrator output for one query.
type RecommendResult struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// AskRequest is the request body for POST /books/:id/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResult pairs the answer with the book it describes.
type AskResult struct {
	Answer string `json:"answer"`
	Book   Book   `json:"book"`
}
