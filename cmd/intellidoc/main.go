// Package main is the IntelliDoc CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/answer"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/config"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/embedding"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/extract"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/ingest"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/rerank"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/search"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/server"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/storage"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/task"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/vector"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/intellidoc/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// picks up the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("intellidoc version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`IntelliDoc - document question answering

Usage:
  intellidoc server [-config path] [-debug]     start the HTTP API server
  intellidoc ingest [-config path] <file>       ingest a document directly
  intellidoc ask [-config path] [-server url] [-doc id] <question>
  intellidoc delete [-config path] <doc-id>     delete a document
  intellidoc status [-config path] [-server url]
  intellidoc version`)
}

// Components holds the initialized application services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Index    vector.Index
	Tasks    *task.Manager
	Ingestor *ingest.Ingestor
	Engine   *search.Engine
	Logger   *zap.Logger
}

// Close releases all component resources.
func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	index, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := index.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load failed, will rebuild from database",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}

	chunker, err := ingest.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize chunker: %w", err)
	}

	tasks := task.NewManager(cfg.Tasks.Retention, logger)

	localChain, alternateChain := buildGenerationPaths(cfg, logger)

	var summarizer *answer.Summarizer
	if localChain != nil {
		summarizer = answer.NewSummarizer(localChain, cfg.Ingest.SummaryMaxWords, logger)
	}

	ingestor := ingest.NewIngestor(ingest.Options{
		Extractor:  extract.NewExtractor(),
		Chunker:    chunker,
		Embedder:   embedder,
		Store:      store,
		Index:      index,
		Tasks:      tasks,
		Summarizer: summarizer,
		BatchSize:  cfg.Ingest.EmbedBatchSize,
		Logger:     logger,
	})

	// Rebuild the index from the database when the snapshot was missing or
	// out of sync.
	if index.Size() == 0 {
		if n, rebuildErr := ingestor.RebuildIndex(context.Background()); rebuildErr != nil {
			logger.Warn("index rebuild failed", zap.Error(rebuildErr))
		} else if n > 0 {
			logger.Info("vector index rebuilt from database", zap.Int("vectors", n))
		}
	}

	var runner *answer.DualRunner
	if localChain != nil || alternateChain != nil {
		// Assign through typed nil checks so a disabled path stays a nil
		// interface inside the runner.
		var localGen, alternateGen answer.Generator
		if localChain != nil {
			localGen = localChain
		}
		if alternateChain != nil {
			alternateGen = alternateChain
		}
		runner = answer.NewDualRunner(localGen, alternateGen, cfg.Answer.GenerationTimeout, logger)
	}

	engine := search.NewEngine(embedder, index, store, rerank.NewReranker(rerank.Weights{}), runner, logger)

	return &Components{
		Storage:  store,
		Embedder: embedder,
		Index:    index,
		Tasks:    tasks,
		Ingestor: ingestor,
		Engine:   engine,
		Logger:   logger,
	}, nil
}

// buildGenerationPaths creates the enabled model chains. The alternate path
// only runs when dual answers are on.
func buildGenerationPaths(cfg *config.Config, logger *zap.Logger) (*answer.ModelChain, *answer.ModelChain) {
	var local, alternate *answer.ModelChain
	if cfg.Answer.Local.Enabled {
		chain, err := answer.NewModelChain(answer.PathLocal, cfg.Answer.Local, cfg.Answer.GenerationTimeout, logger)
		if err != nil {
			logger.Warn("local generation path disabled", zap.Error(err))
		} else {
			local = chain
		}
	}
	if cfg.Answer.DualAnswers && cfg.Answer.Alternate.Enabled {
		chain, err := answer.NewModelChain(answer.PathAlternate, cfg.Answer.Alternate, cfg.Answer.GenerationTimeout, logger)
		if err != nil {
			logger.Warn("alternate generation path disabled", zap.Error(err))
		} else {
			alternate = chain
		}
	}
	return local, alternate
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	components.Tasks.StartJanitor(janitorCtx, cfg.Tasks.SweepInterval)

	srv := server.NewServer(
		components.Engine,
		components.Ingestor,
		components.Storage,
		components.Index,
		components.Tasks,
		cfg,
		logger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	}

	if cfg.Storage.VectorIndexPath != "" {
		if err := components.Index.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Error("failed to save vector index", zap.Error(err))
		} else {
			logger.Info("vector index saved", zap.String("path", cfg.Storage.VectorIndexPath))
		}
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: intellidoc ingest [flags] <file>")
		os.Exit(1)
	}
	filePath := fs.Arg(0)

	content, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}

	components, cfg := mustComponents(*configPath)
	defer components.Close()

	taskID := components.Tasks.Create("direct ingestion")
	components.Ingestor.Run(context.Background(), taskID, content, filePath)

	t, err := components.Tasks.Get(taskID)
	if err != nil {
		fmt.Printf("Task lookup failed: %v\n", err)
		os.Exit(1)
	}
	if t.Status != models.TaskCompleted {
		fmt.Printf("Ingestion failed: %s\n", t.Message)
		os.Exit(1)
	}
	fmt.Printf("Ingested %s\n", filePath)
	fmt.Printf("  document: %s\n", t.Result.DocumentID)
	fmt.Printf("  chunks:   %d\n", t.Result.ChunksCount)

	if cfg.Storage.VectorIndexPath != "" {
		if err := components.Index.Save(cfg.Storage.VectorIndexPath); err != nil {
			fmt.Printf("Warning: failed to save vector index: %v\n", err)
		}
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run against local storage)")
	docID := fs.String("doc", "", "restrict the question to one document id")
	topK := fs.Int("top-k", 0, "retrieval depth (0 = default)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: intellidoc ask [flags] <question>")
		os.Exit(1)
	}
	question := fs.Arg(0)

	query := models.AskQuery{Query: question, DocID: *docID, TopK: *topK}

	var resp *models.AskResponse
	if *serverURL != "" {
		r, err := askViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		resp = r
	} else {
		components, _ := mustComponents(*configPath)
		defer components.Close()
		r, err := components.Engine.Ask(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		resp = r
	}

	printAskResponse(resp)
}

func printAskResponse(resp *models.AskResponse) {
	if resp.NoAnswer {
		fmt.Println("No answer could be generated.")
	} else {
		fmt.Println(resp.Answer)
	}
	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range resp.Sources {
			fmt.Printf("  - %s (%s)\n", s.DocTitle, s.DocID)
		}
	}
	if resp.DualAnswers != nil && resp.DualAnswers.SelectionReason != "" {
		fmt.Printf("\n[%s path selected: %s]\n", resp.DualAnswers.SelectedSource, resp.DualAnswers.SelectionReason)
	}
	fmt.Printf("\n(%.2fs)\n", resp.ProcessingTime)
}

func askViaHTTP(serverURL string, query models.AskQuery) (*models.AskResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	httpResp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		var errBody map[string]string
		_ = json.NewDecoder(httpResp.Body).Decode(&errBody)
		return nil, fmt.Errorf("server returned %d: %s", httpResp.StatusCode, errBody["error"])
	}
	var resp models.AskResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: intellidoc delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	components, cfg := mustComponents(*configPath)
	defer components.Close()

	if err := components.Ingestor.DeleteDocument(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)

	if cfg.Storage.VectorIndexPath != "" {
		if err := components.Index.Save(cfg.Storage.VectorIndexPath); err != nil {
			fmt.Printf("Warning: failed to save vector index: %v\n", err)
		}
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use local storage)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		httpResp, err := http.Get(*serverURL + "/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer httpResp.Body.Close()
		var status map[string]interface{}
		if err := json.NewDecoder(httpResp.Body).Decode(&status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		printStatus(status)
		return
	}

	components, cfg := mustComponents(*configPath)
	defer components.Close()

	ctx := context.Background()
	docCount, err := components.Storage.DocumentCount(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
		os.Exit(1)
	}
	chunkCount, err := components.Storage.ChunkCount(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
		os.Exit(1)
	}
	printStatus(map[string]interface{}{
		"documents":         docCount,
		"chunks":            chunkCount,
		"vector_index_size": components.Index.Size(),
		"config": map[string]interface{}{
			"embedding_backend":    cfg.Embedding.Backend,
			"embedding_dimensions": cfg.Embedding.Dimensions,
			"database_path":        cfg.Storage.DatabasePath,
		},
	})
}

func printStatus(status map[string]interface{}) {
	fmt.Printf("documents:         %v\n", status["documents"])
	fmt.Printf("chunks:            %v\n", status["chunks"])
	fmt.Printf("vector index size: %v\n", status["vector_index_size"])
	if cfg, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("config:")
		for k, v := range cfg {
			fmt.Printf("  %s: %v\n", k, v)
		}
	}
}

// mustComponents loads the config and initializes all components, exiting on
// any failure.
func mustComponents(configPath string) (*Components, *config.Config) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, cfg
}
