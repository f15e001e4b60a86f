package answer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/config"
)

// ModelChain generates against an OpenAI-compatible endpoint, trying an
// ordered list of model variants until one succeeds. Each attempt gets its
// own timeout so a hung model cannot consume the whole budget.
type ModelChain struct {
	name           PathName
	client         *openai.Client
	models         []config.ModelVariant
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// NewModelChain builds a generation path from its config. The API key is
// read from the environment variable named by cfg.APIKeyEnv; local servers
// commonly accept an empty key.
func NewModelChain(name PathName, cfg config.GenerationPathConfig, attemptTimeout time.Duration, logger *zap.Logger) (*ModelChain, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("generation path %s: no models configured", name)
	}
	clientCfg := openai.DefaultConfig(os.Getenv(cfg.APIKeyEnv))
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelChain{
		name:           name,
		client:         openai.NewClientWithConfig(clientCfg),
		models:         cfg.Models,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}, nil
}

// Name returns the path name.
func (c *ModelChain) Name() string {
	return string(c.name)
}

// Generate tries each configured model in order and returns the first
// non-empty completion. All attempts failing wraps ErrGenerationFailed.
func (c *ModelChain) Generate(ctx context.Context, query string, passages []string) (string, error) {
	answer, _, err := c.GenerateWithModel(ctx, query, passages)
	return answer, err
}

// GenerateWithModel is Generate plus the name of the model that answered.
func (c *ModelChain) GenerateWithModel(ctx context.Context, query string, passages []string) (string, string, error) {
	prompt := buildPrompt(query, passages)
	var lastErr error
	for _, m := range c.models {
		select {
		case <-ctx.Done():
			return "", "", fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
		default:
		}
		answer, err := c.attempt(ctx, m.Name, prompt)
		if err != nil {
			c.logger.Debug("model attempt failed",
				zap.String("path", string(c.name)),
				zap.String("model", m.Name),
				zap.String("capability", m.Capability),
				zap.Error(err))
			lastErr = err
			continue
		}
		if strings.TrimSpace(answer) == "" {
			lastErr = fmt.Errorf("model %s returned an empty completion", m.Name)
			continue
		}
		return answer, m.Name, nil
	}
	return "", "", fmt.Errorf("%w: all models exhausted: %v", ErrGenerationFailed, lastErr)
}

func (c *ModelChain) attempt(ctx context.Context, model, prompt string) (string, error) {
	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}
	resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}
