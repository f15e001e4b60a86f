package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/extract"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/storage"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/task"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.config.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, "file too large or malformed multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !extract.Supported(ext) {
		s.respondError(w, http.StatusBadRequest, "unsupported file format: "+ext)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(content) == 0 {
		s.respondError(w, http.StatusBadRequest, "empty file")
		return
	}

	taskID := s.tasks.Create("queued for processing")
	s.logger.Info("upload accepted",
		zap.String("task_id", taskID),
		zap.String("file", header.Filename),
		zap.Int("bytes", len(content)))

	// Processing continues past this request; the client polls the task.
	go s.ingestor.Run(context.Background(), taskID, content, header.Filename)

	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  string(models.TaskQueued),
		"message": "document queued for processing",
	})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "task_id")
	t, err := s.tasks.Get(id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "task not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var query models.AskQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))
	response, err := s.engine.Ask(r.Context(), query)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.storage.ListDocuments(r.Context())
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []models.DocumentSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.ingestor.DeleteDocument(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.DocumentCount(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.ChunkCount(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"documents":         docCount,
		"chunks":            chunkCount,
		"vector_index_size": s.index.Size(),
		"pending_tasks":     s.tasks.Count(),
		"config": map[string]interface{}{
			"embedding_backend":    s.config.Embedding.Backend,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"chunk_size":           s.config.Ingest.ChunkSize,
			"chunk_overlap":        s.config.Ingest.ChunkOverlap,
			"retrieve_k":           s.config.Search.RetrieveK,
			"rerank_m":             s.config.Search.RerankM,
			"dual_answers":         s.config.Answer.DualAnswers,
		},
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
