package models

import "time"

// TaskStatus is the lifecycle state of an ingestion task.
type TaskStatus string

const (
	TaskQueued     TaskStatus = "queued"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether the status is final (completed or failed).
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// IngestionResult describes the outcome of a completed ingestion task.
type IngestionResult struct {
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	ChunksCount int    `json:"chunks_count"`
	FileSize    int64  `json:"file_size"`
	FileType    string `json:"file_type"`
}

// IngestionTask tracks one upload through extract, chunk, embed, and persist.
// Progress is monotonically non-decreasing while processing. Once terminal,
// the record is immutable and remains retrievable for the retention window.
type IngestionTask struct {
	TaskID    string           `json:"task_id"`
	Status    TaskStatus       `json:"status"`
	Progress  int              `json:"progress"`
	Message   string           `json:"message"`
	Result    *IngestionResult `json:"result,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}
