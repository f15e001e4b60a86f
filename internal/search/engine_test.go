package search

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/answer"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/embedding"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/extract"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/ingest"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/rerank"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/storage"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/task"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/vector"
)

// newTestEngine builds a full pipeline with the mock embedder and no
// generation runner, plus an ingestor for seeding documents.
func newTestEngine(t *testing.T) (*Engine, *ingest.Ingestor, *task.Manager) {
	t.Helper()
	return newTestEngineWithRunner(t, nil)
}

func newTestEngineWithRunner(t *testing.T, runner *answer.DualRunner) (*Engine, *ingest.Ingestor, *task.Manager) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "search.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	idx, _ := vector.NewMemoryIndex(16)
	embedder := embedding.NewMockEmbedder(16)
	chunker, _ := ingest.NewChunker(200, 40)
	tasks := task.NewManager(time.Hour, nil)
	ing := ingest.NewIngestor(ingest.Options{
		Extractor: extract.NewExtractor(),
		Chunker:   chunker,
		Embedder:  embedder,
		Store:     store,
		Index:     idx,
		Tasks:     tasks,
	})
	engine := NewEngine(embedder, idx, store, rerank.NewReranker(rerank.Weights{}), runner, nil)
	return engine, ing, tasks
}

type fixedGenerator struct {
	answer string
	err    error
}

func (g fixedGenerator) Generate(ctx context.Context, query string, passages []string) (string, error) {
	return g.answer, g.err
}

func (g fixedGenerator) Name() string { return "fixed" }

func seed(t *testing.T, ing *ingest.Ingestor, tasks *task.Manager, name, content string) string {
	t.Helper()
	id := tasks.Create("queued")
	ing.Run(context.Background(), id, []byte(content), name)
	got, err := tasks.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.TaskCompleted {
		t.Fatalf("seeding %s failed: %s", name, got.Message)
	}
	return got.Result.DocumentID
}

func TestAsk_RetrievesRelevantSource(t *testing.T) {
	engine, ing, tasks := newTestEngine(t)
	examDoc := seed(t, ing, tasks, "syllabus.txt",
		strings.Repeat("The final exam is scheduled for May 5th in room 204. Bring a calculator. ", 6))
	seed(t, ing, tasks, "budget.txt",
		strings.Repeat("Quarterly budget figures were reviewed by the finance committee. ", 6))

	resp, err := engine.Ask(context.Background(), models.AskQuery{Query: "When is the final exam?"})
	if err != nil {
		t.Fatal(err)
	}
	// No generation runner is configured, so the ask is retrieval-only.
	if !resp.NoAnswer {
		t.Error("no_answer should be set without a generation runner")
	}
	if len(resp.Sources) == 0 {
		t.Fatal("sources must be returned even without an answer")
	}
	if resp.ProcessingTime <= 0 {
		t.Error("processing_time not recorded")
	}
	found := false
	for _, s := range resp.Sources {
		if s.DocID == examDoc {
			found = true
			if s.DocTitle != "syllabus.txt" {
				t.Errorf("title = %s", s.DocTitle)
			}
		}
	}
	if !found {
		t.Error("exam document not among sources")
	}
}

func TestAsk_DocFilter(t *testing.T) {
	engine, ing, tasks := newTestEngine(t)
	seed(t, ing, tasks, "a.txt", strings.Repeat("Shared wording about deadlines and planning. ", 6))
	docB := seed(t, ing, tasks, "b.txt", strings.Repeat("Shared wording about deadlines and planning. ", 6))

	resp, err := engine.Ask(context.Background(), models.AskQuery{Query: "deadlines", DocID: docB})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range resp.Sources {
		if s.DocID != docB {
			t.Errorf("filter leaked document %s", s.DocID)
		}
	}
}

func TestAsk_EmptyIndex(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	resp, err := engine.Ask(context.Background(), models.AskQuery{Query: "anything at all"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.NoAnswer {
		t.Error("empty corpus must set no_answer")
	}
	if len(resp.Sources) != 0 {
		t.Error("empty corpus has no sources")
	}
}

func TestAsk_ValidationErrors(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	if _, err := engine.Ask(context.Background(), models.AskQuery{Query: ""}); err == nil {
		t.Error("empty query should be rejected")
	}
	if _, err := engine.Ask(context.Background(), models.AskQuery{Query: strings.Repeat("x", 501)}); err == nil {
		t.Error("oversized query should be rejected")
	}
}

func TestAsk_AllGenerationPathsFail(t *testing.T) {
	down := errors.New("model endpoint down")
	runner := answer.NewDualRunner(fixedGenerator{err: down}, fixedGenerator{err: down}, 0, nil)
	engine, ing, tasks := newTestEngineWithRunner(t, runner)
	doc := seed(t, ing, tasks, "syllabus.txt",
		strings.Repeat("The final exam is scheduled for May 5th in room 204. ", 6))

	resp, err := engine.Ask(context.Background(), models.AskQuery{Query: "When is the final exam?"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.NoAnswer || resp.Answer != "" {
		t.Errorf("failed generation must set no_answer without an answer, got %+v", resp)
	}
	if len(resp.Sources) == 0 || resp.Sources[0].DocID != doc {
		t.Error("sources must survive a generation failure")
	}
	if resp.DualAnswers == nil {
		t.Error("per-path detail should still be reported")
	}
}

func TestAsk_SelectsGeneratedAnswer(t *testing.T) {
	runner := answer.NewDualRunner(
		fixedGenerator{answer: "The exam is on May 5th in room 204."},
		fixedGenerator{err: errors.New("down")}, 0, nil)
	engine, ing, tasks := newTestEngineWithRunner(t, runner)
	seed(t, ing, tasks, "syllabus.txt",
		strings.Repeat("The final exam is scheduled for May 5th in room 204. ", 6))

	resp, err := engine.Ask(context.Background(), models.AskQuery{Query: "When is the final exam?"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.NoAnswer || resp.Answer != "The exam is on May 5th in room 204." {
		t.Errorf("answer = %q, no_answer = %v", resp.Answer, resp.NoAnswer)
	}
	if resp.DualAnswers == nil || resp.DualAnswers.SelectedSource != string(answer.PathLocal) {
		t.Errorf("dual answer detail = %+v", resp.DualAnswers)
	}
}

func TestAsk_SourcesDeduplicated(t *testing.T) {
	engine, ing, tasks := newTestEngine(t)
	doc := seed(t, ing, tasks, "long.txt",
		strings.Repeat("Recurring topic sentence about the annual review process. ", 30))

	resp, err := engine.Ask(context.Background(), models.AskQuery{Query: "annual review process", TopK: 10, TopM: 5})
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, s := range resp.Sources {
		if s.DocID == doc {
			count++
		}
	}
	if count > 1 {
		t.Errorf("document listed %d times in sources", count)
	}
}
