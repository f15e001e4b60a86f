// Package storage persists documents and their chunks.
package storage

import (
	"context"
	"errors"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Storage is the persistence interface for documents and chunks.
type Storage interface {
	// CreateDocumentWithChunks inserts the document and all its chunks in one
	// transaction; on any error nothing is persisted.
	CreateDocumentWithChunks(ctx context.Context, doc *models.Document, chunks []models.Chunk) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	// ListDocuments returns lightweight summaries, newest first.
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)
	// DeleteDocument removes the document and its chunks. Missing ids return
	// ErrNotFound.
	DeleteDocument(ctx context.Context, id string) error
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunks(ctx context.Context, ids []string) ([]models.Chunk, error)
	// AllChunks streams every chunk with its embedding, used to rebuild the
	// vector index at startup.
	AllChunks(ctx context.Context) ([]models.Chunk, error)
	DocumentCount(ctx context.Context) (int, error)
	ChunkCount(ctx context.Context) (int, error)
	Close() error
}
