package models

import "fmt"

// AskQuery is a natural-language question against the indexed corpus.
type AskQuery struct {
	Query string `json:"query"`
	// TopK is how many chunks similarity retrieval returns before re-ranking.
	TopK int `json:"top_k,omitempty"`
	// TopM is how many re-ranked chunks feed answer synthesis (TopM <= TopK).
	TopM int `json:"top_m,omitempty"`
	// DocID restricts retrieval to a single document when set.
	DocID string `json:"doc_id,omitempty"`
}

// Validate checks the query and normalizes retrieval bounds.
func (q *AskQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if len(q.Query) > 500 {
		return fmt.Errorf("query too long (max 500 characters)")
	}
	if q.TopK <= 0 {
		q.TopK = 10
	}
	if q.TopK > 50 {
		q.TopK = 50
	}
	if q.TopM <= 0 {
		q.TopM = 3
	}
	if q.TopM > q.TopK {
		q.TopM = q.TopK
	}
	return nil
}
