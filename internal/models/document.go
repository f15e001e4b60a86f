// Package models defines core data structures for documents, chunks, tasks, and answers.
package models

import "time"

// Document represents an ingested document with its extracted text and metadata.
// Content is immutable once the ingestion task that created it completes.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Summary   *string   `json:"summary,omitempty" db:"summary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	FileSize  int64     `json:"file_size" db:"file_size"`
	FileType  string    `json:"file_type" db:"file_type"`
}

// DocumentSummary is a lightweight view for listings (no content body).
type DocumentSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     *string   `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	FileSize    int64     `json:"file_size"`
	FileType    string    `json:"file_type"`
	ChunksCount int       `json:"chunks_count"`
}

// Chunk is a bounded, overlapping slice of a document's text, the atomic
// unit of retrieval. Embedding is a unit-length vector; all chunk and query
// embeddings share the same dimensionality and normalization, otherwise
// similarity scores are meaningless.
type Chunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"doc_id" db:"document_id"`
	Text       string    `json:"text" db:"text"`
	Seq        int       `json:"seq" db:"seq"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
