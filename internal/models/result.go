package models

// Source identifies a document that backed a synthesized answer.
type Source struct {
	DocID    string `json:"doc_id"`
	DocTitle string `json:"doc_title"`
}

// DualAnswerInfo carries both generated answers and the selection outcome
// when dual-answer comparison ran.
type DualAnswerInfo struct {
	LocalAnswer     string `json:"local_answer"`
	AlternateAnswer string `json:"alternate_answer"`
	SelectedSource  string `json:"selected_source"`
	SelectionReason string `json:"selection_reason"`
}

// AskResponse is the answer to an AskQuery. Sources lists the documents
// backing the answer, deduplicated and ordered by contribution strength.
// It is ephemeral and never persisted.
type AskResponse struct {
	Query          string          `json:"query"`
	Answer         string          `json:"answer"`
	Sources        []Source        `json:"sources"`
	ProcessingTime float64         `json:"processing_time,omitempty"`
	NoAnswer       bool            `json:"no_answer,omitempty"`
	DualAnswers    *DualAnswerInfo `json:"dual_answers,omitempty"`
}
