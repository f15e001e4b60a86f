package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/pkg/utils"
)

// OpenAIEmbedder produces embeddings through any OpenAI-compatible endpoint
// (OpenAI, Ollama, llama.cpp server). Batches are sent in a single request.
// Vectors are re-normalized to unit length so cosine similarity stays a dot
// product regardless of what the backend returns.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	cache      *Cache
}

// OpenAIConfig configures an OpenAI-compatible embedding backend.
type OpenAIConfig struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Dimensions int
	CacheSize  int
}

// NewOpenAIEmbedder creates an embedder against cfg.BaseURL. The API key is
// read from the environment variable named by cfg.APIKeyEnv; an empty key is
// allowed for local servers that do not check it.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	clientCfg := openai.DefaultConfig(os.Getenv(cfg.APIKeyEnv))
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		cache:      NewCache(cfg.CacheSize),
	}, nil
}

// Embed returns the unit-length embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds all texts in one request. Cached texts are not re-sent.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			results[i] = cached
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return results, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: missing,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) != len(missing) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbeddingFailed, len(resp.Data), len(missing))
	}
	for j, d := range resp.Data {
		if len(d.Embedding) != e.dimensions {
			return nil, fmt.Errorf("%w: dimension mismatch: got %d, expected %d", ErrEmbeddingFailed, len(d.Embedding), e.dimensions)
		}
		emb := make([]float32, e.dimensions)
		copy(emb, d.Embedding)
		utils.NormalizeL2(emb)
		e.cache.Set(missing[j], emb)
		results[missingIdx[j]] = emb
	}
	return results, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client has no resources to release.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
