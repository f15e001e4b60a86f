package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./data/docs.db
ingest:
  chunk_size: 400
  chunk_overlap: 60
answer:
  dual_answers: true
  generation_timeout: 30s
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 400 || cfg.Ingest.ChunkOverlap != 60 {
		t.Errorf("chunking: got %d/%d", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if !cfg.Answer.DualAnswers {
		t.Error("dual_answers should be true")
	}
	if cfg.Answer.GenerationTimeout != 30*time.Second {
		t.Errorf("generation_timeout: got %v", cfg.Answer.GenerationTimeout)
	}
	// ./ paths are resolved relative to the config directory.
	want := filepath.Join(dir, "data/docs.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database_path: got %s, want %s", cfg.Storage.DatabasePath, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Ingest.ChunkSize != 800 {
		t.Errorf("chunk_size default: got %d, want 800", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.ChunkOverlap != 120 {
		t.Errorf("chunk_overlap default: got %d, want 120", cfg.Ingest.ChunkOverlap)
	}
	if cfg.Search.RetrieveK != 10 || cfg.Search.RerankM != 3 {
		t.Errorf("retrieval defaults: got %d/%d", cfg.Search.RetrieveK, cfg.Search.RerankM)
	}
	if cfg.Ingest.SummaryMaxWords != 1500 {
		t.Errorf("summary_max_words default: got %d", cfg.Ingest.SummaryMaxWords)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions default: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Tasks.Retention != 24*time.Hour {
		t.Errorf("retention default: got %v", cfg.Tasks.Retention)
	}
	if len(cfg.Answer.Alternate.Models) == 0 {
		t.Error("alternate model chain should have defaults")
	}
}
