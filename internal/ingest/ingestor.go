package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/answer"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/embedding"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/extract"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/storage"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/task"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/vector"
)

// Ingestor runs the document ingestion pipeline: extract, summarize, chunk,
// embed, persist, index. Progress is reported through the task manager.
type Ingestor struct {
	extractor  *extract.Extractor
	chunker    *Chunker
	embedder   embedding.Embedder
	store      storage.Storage
	index      vector.Index
	tasks      *task.Manager
	summarizer *answer.Summarizer
	batchSize  int
	logger     *zap.Logger
}

// Options configures an Ingestor.
type Options struct {
	Extractor  *extract.Extractor
	Chunker    *Chunker
	Embedder   embedding.Embedder
	Store      storage.Storage
	Index      vector.Index
	Tasks      *task.Manager
	Summarizer *answer.Summarizer
	BatchSize  int
	Logger     *zap.Logger
}

// NewIngestor creates an ingestion pipeline. Summarizer may be nil.
func NewIngestor(opts Options) *Ingestor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	return &Ingestor{
		extractor:  opts.Extractor,
		chunker:    opts.Chunker,
		embedder:   opts.Embedder,
		store:      opts.Store,
		index:      opts.Index,
		tasks:      opts.Tasks,
		summarizer: opts.Summarizer,
		batchSize:  opts.BatchSize,
		logger:     opts.Logger,
	}
}

// Run executes the pipeline for one upload, updating the task as it goes.
// Intended to be called in a goroutine; all failures end in task.Fail.
func (g *Ingestor) Run(ctx context.Context, taskID string, fileBytes []byte, fileName string) {
	if err := g.tasks.Start(taskID); err != nil {
		g.logger.Error("cannot start task", zap.String("task_id", taskID), zap.Error(err))
		return
	}

	doc, chunks, err := g.process(ctx, taskID, fileBytes, fileName)
	if err != nil {
		g.logger.Warn("ingestion failed",
			zap.String("task_id", taskID),
			zap.String("file", fileName),
			zap.Error(err))
		_ = g.tasks.Fail(taskID, err.Error())
		return
	}

	result := &models.IngestionResult{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		ChunksCount: len(chunks),
		FileSize:    doc.FileSize,
		FileType:    doc.FileType,
	}
	_ = g.tasks.Complete(taskID, result)
	g.logger.Info("document ingested",
		zap.String("doc_id", doc.ID),
		zap.String("title", doc.Title),
		zap.Int("chunks", len(chunks)))
}

func (g *Ingestor) process(ctx context.Context, taskID string, fileBytes []byte, fileName string) (*models.Document, []models.Chunk, error) {
	_ = g.tasks.Update(taskID, 10, "extracting text")
	text, err := g.extractor.Extract(fileBytes, fileName)
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", fileName, err)
	}
	_ = g.tasks.Update(taskID, 20, "text extracted")

	docID := uuid.New().String()
	doc := &models.Document{
		ID:        docID,
		Title:     filepath.Base(fileName),
		Content:   text,
		CreatedAt: time.Now(),
		FileSize:  int64(len(fileBytes)),
		FileType:  strings.ToLower(filepath.Ext(fileName)),
	}

	if g.summarizer != nil {
		doc.Summary = g.summarizer.Summarize(ctx, doc.Title, text)
	}
	_ = g.tasks.Update(taskID, 40, "document summarized")

	pieces := g.chunker.Split(text)
	if len(pieces) == 0 {
		return nil, nil, fmt.Errorf("document %s produced no chunks", fileName)
	}
	_ = g.tasks.Update(taskID, 50, fmt.Sprintf("split into %d chunks", len(pieces)))

	chunks := make([]models.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = models.Chunk{
			ID:         ChunkID(docID, p.Seq),
			DocumentID: docID,
			Text:       p.Text,
			Seq:        p.Seq,
			CreatedAt:  doc.CreatedAt,
		}
	}

	if err := g.embedChunks(ctx, taskID, chunks); err != nil {
		return nil, nil, err
	}

	_ = g.tasks.Update(taskID, 85, "persisting document")
	if err := g.store.CreateDocumentWithChunks(ctx, doc, chunks); err != nil {
		return nil, nil, fmt.Errorf("persist document: %w", err)
	}

	entries := make([]vector.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = vector.Entry{ChunkID: c.ID, DocID: docID, Vector: c.Embedding}
	}
	if err := g.index.Add(ctx, entries); err != nil {
		// The document already committed. Remove it so a failed task never
		// leaves a live document behind, including after an index rebuild.
		g.logger.Error("index add failed after persist", zap.String("doc_id", docID), zap.Error(err))
		if delErr := g.store.DeleteDocument(ctx, docID); delErr != nil {
			g.logger.Error("rollback of persisted document failed",
				zap.String("doc_id", docID), zap.Error(delErr))
		}
		return nil, nil, fmt.Errorf("index document: %w", err)
	}

	return doc, chunks, nil
}

// embedChunks fills in chunk embeddings in batches, advancing task progress
// from 50 towards 80.
func (g *Ingestor) embedChunks(ctx context.Context, taskID string, chunks []models.Chunk) error {
	total := len(chunks)
	for start := 0; start < total; start += g.batchSize {
		end := start + g.batchSize
		if end > total {
			end = total
		}
		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = chunks[i].Text
		}
		embeddings, err := g.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		for i := start; i < end; i++ {
			chunks[i].Embedding = embeddings[i-start]
		}
		progress := 50 + (30 * end / total)
		_ = g.tasks.Update(taskID, progress, fmt.Sprintf("embedded %d/%d chunks", end, total))
	}
	return nil
}

// DeleteDocument removes a document from the index and the store. Index
// removal happens first so a failed database delete cannot leave searchable
// vectors for a missing document.
func (g *Ingestor) DeleteDocument(ctx context.Context, docID string) error {
	if _, err := g.store.GetDocument(ctx, docID); err != nil {
		return err
	}
	if err := g.index.RemoveDocument(ctx, docID); err != nil {
		return fmt.Errorf("remove from index: %w", err)
	}
	if err := g.store.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// RebuildIndex reloads every chunk embedding from storage into the index.
// Used at startup when the index snapshot is missing.
func (g *Ingestor) RebuildIndex(ctx context.Context) (int, error) {
	chunks, err := g.store.AllChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}
	entries := make([]vector.Entry, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		entries = append(entries, vector.Entry{ChunkID: c.ID, DocID: c.DocumentID, Vector: c.Embedding})
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := g.index.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	return len(entries), nil
}
