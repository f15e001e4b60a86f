// Package server provides the HTTP API for IntelliDoc.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/config"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/ingest"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/search"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/storage"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/task"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/vector"
)

// Server is the HTTP server for the IntelliDoc API.
type Server struct {
	engine   *search.Engine
	ingestor *ingest.Ingestor
	storage  storage.Storage
	index    vector.Index
	tasks    *task.Manager
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	ingestor *ingest.Ingestor,
	store storage.Storage,
	index vector.Index,
	tasks *task.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:   engine,
		ingestor: ingestor,
		storage:  store,
		index:    index,
		tasks:    tasks,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/documents/upload", s.handleUpload)
	r.Get("/api/v1/tasks/{task_id}", s.handleTaskStatus)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
