package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/intellidoc/data/db/documents.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/intellidoc/data/indices/vectors.bin"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/intellidoc/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "INTELLIDOC_EMBED_API_KEY"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 800
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 120
	}
	if cfg.Ingest.EmbedBatchSize == 0 {
		cfg.Ingest.EmbedBatchSize = 32
	}
	if cfg.Ingest.SummaryMaxWords == 0 {
		cfg.Ingest.SummaryMaxWords = 1500
	}
	if cfg.Ingest.MaxFileSize == 0 {
		cfg.Ingest.MaxFileSize = 25 * 1024 * 1024
	}
	if cfg.Search.RetrieveK == 0 {
		cfg.Search.RetrieveK = 10
	}
	if cfg.Search.RerankM == 0 {
		cfg.Search.RerankM = 3
	}
	if cfg.Answer.GenerationTimeout == 0 {
		cfg.Answer.GenerationTimeout = 45 * time.Second
	}
	if cfg.Answer.Local.APIKeyEnv == "" {
		cfg.Answer.Local.APIKeyEnv = "INTELLIDOC_LOCAL_API_KEY"
	}
	if cfg.Answer.Local.BaseURL == "" {
		cfg.Answer.Local.BaseURL = "http://localhost:11434/v1"
	}
	if len(cfg.Answer.Local.Models) == 0 {
		cfg.Answer.Local.Models = []ModelVariant{
			{Name: "llama3.1:8b", Capability: "best"},
			{Name: "gemma2:2b", Capability: "fast"},
		}
	}
	if cfg.Answer.Alternate.APIKeyEnv == "" {
		cfg.Answer.Alternate.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Answer.Alternate.BaseURL == "" {
		cfg.Answer.Alternate.BaseURL = "https://api.groq.com/openai/v1"
	}
	if len(cfg.Answer.Alternate.Models) == 0 {
		cfg.Answer.Alternate.Models = []ModelVariant{
			{Name: "llama-3.1-70b-versatile", Capability: "best"},
			{Name: "llama-3.1-8b-instant", Capability: "fast"},
			{Name: "mixtral-8x7b-32768", Capability: "backup"},
		}
	}
	if cfg.Tasks.Retention == 0 {
		cfg.Tasks.Retention = 24 * time.Hour
	}
	if cfg.Tasks.SweepInterval == 0 {
		cfg.Tasks.SweepInterval = time.Hour
	}
}
