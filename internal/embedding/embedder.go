// Package embedding provides text embedding backends (ONNX, OpenAI-compatible, mock).
package embedding

import (
	"context"
	"errors"
)

// ErrEmbeddingFailed is returned when the embedding backend is unavailable or
// produces no vector. During ingestion it is terminal for the owning task only.
var ErrEmbeddingFailed = errors.New("embedding failed")

// Embedder produces unit-length vector embeddings for text. Identical input
// yields identical vectors. Implementations are safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
