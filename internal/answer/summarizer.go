package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/pkg/utils"
)

// Summarizer produces a short document summary at ingestion time. It is
// best effort: any failure yields a nil summary and never blocks ingestion.
type Summarizer struct {
	gen      Generator
	maxWords int
	logger   *zap.Logger
}

// NewSummarizer creates a summarizer over the given generator; a nil
// generator disables summarization.
func NewSummarizer(gen Generator, maxWords int, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{gen: gen, maxWords: maxWords, logger: logger}
}

// Summarize returns a pointer to the summary text, or nil when
// summarization is disabled or fails.
func (s *Summarizer) Summarize(ctx context.Context, title, content string) *string {
	if s.gen == nil {
		return nil
	}
	head := utils.FirstWords(content, s.maxWords)
	query := "Summarize this document titled \"" + title + "\" in 2-3 sentences."
	summary, err := s.gen.Generate(ctx, query, []string{head})
	if err != nil {
		s.logger.Debug("summarization failed", zap.String("title", title), zap.Error(err))
		return nil
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil
	}
	return &summary
}
