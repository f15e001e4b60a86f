// Package answer synthesizes answers from retrieved passages using two
// generation paths (a local model chain and a cloud alternate) and selects
// the better result.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrGenerationFailed is wrapped by all generation errors.
var ErrGenerationFailed = errors.New("answer generation failed")

// ErrNoAnswer indicates every generation path failed; retrieval results are
// still valid.
var ErrNoAnswer = errors.New("no answer available")

// Generator produces an answer to query grounded in the given context
// passages.
type Generator interface {
	Generate(ctx context.Context, query string, passages []string) (string, error)
	Name() string
}

// PathName identifies which generation path produced an answer.
type PathName string

const (
	PathLocal     PathName = "local"
	PathAlternate PathName = "alternate"
)

// PathResult is the outcome of one generation path.
type PathResult struct {
	Path   PathName
	Answer string
	Model  string
	Err    error
}

// OK reports whether the path produced a usable answer.
func (r PathResult) OK() bool {
	return r.Err == nil && strings.TrimSpace(r.Answer) != ""
}

const systemPrompt = "You are a document question answering assistant. " +
	"Answer the question using only the provided context passages. " +
	"Quote specific facts, dates and numbers from the context when they are relevant. " +
	"If the context does not contain the answer, say that you don't know."

// buildPrompt assembles the user message: numbered context passages followed
// by the question.
func buildPrompt(query string, passages []string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(p))
	}
	b.WriteString("Question: ")
	b.WriteString(strings.TrimSpace(query))
	return b.String()
}
