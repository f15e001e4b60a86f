package embedding

import (
	"fmt"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/config"
)

// NewEmbedder creates the embedding backend selected by cfg.Backend:
// "onnx" (local model, falls back to mock when the runtime or model is
// unavailable), "openai" (OpenAI-compatible endpoint), or "mock".
func NewEmbedder(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Backend {
	case "onnx", "":
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			// Keep the service usable without the native runtime; scores are
			// meaningless but every pipeline stage still exercises.
			return NewMockEmbedder(cfg.Dimensions), nil
		}
		return onnx, nil
	case "openai":
		return NewOpenAIEmbedder(OpenAIConfig{
			BaseURL:    cfg.BaseURL,
			APIKeyEnv:  cfg.APIKeyEnv,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			CacheSize:  cfg.CacheSize,
		})
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s (supported: onnx, openai, mock)", cfg.Backend)
	}
}
