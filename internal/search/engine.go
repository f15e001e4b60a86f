// Package search runs the question answering pipeline: retrieve, re-rank,
// synthesize, attribute sources.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/answer"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/embedding"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/rerank"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/storage"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/vector"
)

// Engine answers questions against the indexed corpus.
type Engine struct {
	embedder embedding.Embedder
	index    vector.Index
	store    storage.Storage
	reranker *rerank.Reranker
	runner   *answer.DualRunner
	logger   *zap.Logger
}

// NewEngine assembles the ask pipeline. runner may be nil, in which case
// every ask returns retrieval results with the no-answer marker.
func NewEngine(embedder embedding.Embedder, index vector.Index, store storage.Storage, reranker *rerank.Reranker, runner *answer.DualRunner, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		embedder: embedder,
		index:    index,
		store:    store,
		reranker: reranker,
		runner:   runner,
		logger:   logger,
	}
}

// Ask runs the full pipeline for one query. Generation failures never fail
// the call: the response carries the no-answer marker with sources intact.
func (e *Engine) Ask(ctx context.Context, query models.AskQuery) (*models.AskResponse, error) {
	start := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	queryVec, err := e.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.index.TopK(ctx, queryVec, query.TopK, query.DocID)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(hits) == 0 {
		return &models.AskResponse{
			Query:          query.Query,
			Answer:         "",
			NoAnswer:       true,
			ProcessingTime: time.Since(start).Seconds(),
		}, nil
	}

	candidates, err := e.loadCandidates(ctx, hits)
	if err != nil {
		return nil, err
	}

	top := e.reranker.Rerank(query.Query, candidates, query.TopM)
	passages := make([]string, len(top))
	for i, s := range top {
		passages[i] = s.Text
	}

	resp := &models.AskResponse{Query: query.Query}
	resp.Sources, err = e.buildSources(ctx, top)
	if err != nil {
		return nil, err
	}

	if e.runner == nil {
		resp.NoAnswer = true
	} else {
		sel, info, genErr := e.runner.Run(ctx, query.Query, passages)
		resp.DualAnswers = info
		if genErr != nil {
			if !errors.Is(genErr, answer.ErrNoAnswer) {
				return nil, genErr
			}
			e.logger.Warn("all generation paths failed", zap.String("query", query.Query))
			resp.NoAnswer = true
		} else {
			resp.Answer = sel.Answer
		}
	}

	resp.ProcessingTime = time.Since(start).Seconds()
	return resp, nil
}

// loadCandidates fetches chunk texts for the retrieval hits, pairing each
// with its vector score.
func (e *Engine) loadCandidates(ctx context.Context, hits []vector.Result) ([]rerank.Candidate, error) {
	ids := make([]string, len(hits))
	scoreByID := make(map[string]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
		scoreByID[h.ChunkID] = h.Score
	}
	chunks, err := e.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	candidates := make([]rerank.Candidate, len(chunks))
	for i, c := range chunks {
		candidates[i] = rerank.Candidate{
			ChunkID:     c.ID,
			DocID:       c.DocumentID,
			Text:        c.Text,
			VectorScore: scoreByID[c.ID],
		}
	}
	return candidates, nil
}

// buildSources maps the top passages to their documents, deduplicated and
// ordered by the strongest contributing passage.
func (e *Engine) buildSources(ctx context.Context, top []rerank.Scored) ([]models.Source, error) {
	seen := make(map[string]bool, len(top))
	sources := make([]models.Source, 0, len(top))
	for _, s := range top {
		if seen[s.DocID] {
			continue
		}
		seen[s.DocID] = true
		doc, err := e.store.GetDocument(ctx, s.DocID)
		if err != nil {
			// The chunk outlived its document; skip rather than fail the ask.
			e.logger.Warn("source document missing", zap.String("doc_id", s.DocID), zap.Error(err))
			continue
		}
		sources = append(sources, models.Source{DocID: doc.ID, DocTitle: doc.Title})
	}
	return sources, nil
}
