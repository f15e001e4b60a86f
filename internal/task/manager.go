// Package task tracks the lifecycle of background ingestion jobs.
package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
)

// ErrNotFound is returned when a task id is unknown or already swept.
var ErrNotFound = errors.New("task not found")

// Manager holds ingestion task records in memory. Records move
// queued -> processing -> completed|failed; terminal records are immutable
// and are swept after the retention period.
type Manager struct {
	mu        sync.RWMutex
	tasks     map[string]*models.IngestionTask
	retention time.Duration
	logger    *zap.Logger
}

// NewManager creates a task manager keeping terminal records for retention.
func NewManager(retention time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		tasks:     make(map[string]*models.IngestionTask),
		retention: retention,
		logger:    logger,
	}
}

// Create registers a new queued task and returns its id.
func (m *Manager) Create(message string) string {
	id := uuid.New().String()
	m.mu.Lock()
	m.tasks[id] = &models.IngestionTask{
		TaskID:    id,
		Status:    models.TaskQueued,
		Progress:  0,
		Message:   message,
		UpdatedAt: time.Now(),
	}
	m.mu.Unlock()
	return id
}

// Start moves a queued task to processing.
func (m *Manager) Start(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	t.Status = models.TaskProcessing
	t.UpdatedAt = time.Now()
	return nil
}

// Update sets progress and message on a running task. Progress never moves
// backwards; terminal tasks are left untouched.
func (m *Manager) Update(id string, progress int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	if progress > t.Progress {
		t.Progress = progress
	}
	if message != "" {
		t.Message = message
	}
	t.UpdatedAt = time.Now()
	return nil
}

// Complete marks the task completed with its result and progress 100.
func (m *Manager) Complete(id string, result *models.IngestionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	t.Status = models.TaskCompleted
	t.Progress = 100
	t.Message = "ingestion complete"
	t.Result = result
	t.UpdatedAt = time.Now()
	return nil
}

// Fail marks the task failed, keeping its last progress value.
func (m *Manager) Fail(id string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	t.Status = models.TaskFailed
	t.Message = message
	t.UpdatedAt = time.Now()
	return nil
}

// Get returns a copy of the task record.
func (m *Manager) Get(id string) (models.IngestionTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return models.IngestionTask{}, ErrNotFound
	}
	return *t, nil
}

// Count returns the number of tracked tasks.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// StartJanitor sweeps expired terminal records every interval until ctx is
// cancelled.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.sweep(time.Now()); n > 0 {
					m.logger.Debug("swept expired task records", zap.Int("count", n))
				}
			}
		}
	}()
}

// sweep removes terminal records older than the retention period, measured
// from their last update. Returns the number removed.
func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, t := range m.tasks {
		if t.Status.Terminal() && now.Sub(t.UpdatedAt) > m.retention {
			delete(m.tasks, id)
			removed++
		}
	}
	return removed
}
