// Package config provides configuration loading and structs for the IntelliDoc server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Search    SearchConfig    `yaml:"search"`
	Answer    AnswerConfig    `yaml:"answer"`
	Tasks     TasksConfig     `yaml:"tasks"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the vector index snapshot.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// EmbeddingConfig holds embedding backend settings.
// Backend is one of "onnx" (local model via onnxruntime), "openai"
// (any OpenAI-compatible endpoint), or "mock" (deterministic, for tests).
type EmbeddingConfig struct {
	Backend    string `yaml:"backend"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
}

// IngestConfig holds chunking and upload processing settings.
type IngestConfig struct {
	ChunkSize       int   `yaml:"chunk_size"`
	ChunkOverlap    int   `yaml:"chunk_overlap"`
	EmbedBatchSize  int   `yaml:"embed_batch_size"`
	SummaryMaxWords int   `yaml:"summary_max_words"`
	MaxFileSize     int64 `yaml:"max_file_size"`
}

// SearchConfig holds retrieval settings for question answering.
type SearchConfig struct {
	// RetrieveK is how many chunks similarity search returns before re-ranking.
	RetrieveK int `yaml:"retrieve_k"`
	// RerankM is how many re-ranked chunks feed answer synthesis.
	RerankM int `yaml:"rerank_m"`
}

// ModelVariant is one entry of a generation fallback chain. Variants are
// tried in order; Capability is a human-readable tag ("best", "fast", ...).
type ModelVariant struct {
	Name       string `yaml:"name"`
	Capability string `yaml:"capability"`
}

// GenerationPathConfig configures one answer-generation path against an
// OpenAI-compatible endpoint.
type GenerationPathConfig struct {
	Enabled   bool           `yaml:"enabled"`
	BaseURL   string         `yaml:"base_url"`
	APIKeyEnv string         `yaml:"api_key_env"`
	Models    []ModelVariant `yaml:"models"`
}

// AnswerConfig holds answer synthesis settings for both generation paths.
type AnswerConfig struct {
	Local     GenerationPathConfig `yaml:"local"`
	Alternate GenerationPathConfig `yaml:"alternate"`
	// DualAnswers enables running both paths and selecting the better answer.
	DualAnswers bool `yaml:"dual_answers"`
	// GenerationTimeout bounds each path (and each model attempt within it).
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
}

// TasksConfig holds ingestion task record retention settings.
type TasksConfig struct {
	// Retention is how long terminal task records stay retrievable.
	Retention time.Duration `yaml:"retention"`
	// SweepInterval is how often expired terminal records are removed.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
