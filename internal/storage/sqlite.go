package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/models"
	"github.com/ARJUNRAWAT-DEL/INTELLIDOC/internal/vector"
)

// SQLiteStorage implements Storage using SQLite. Chunk embeddings are stored
// as little-endian float32 blobs so the vector index can be rebuilt from the
// database alone.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// foreign_keys is a per-connection pragma; setting it in the DSN makes
	// every pooled connection enforce it, not just the one that ran an Exec.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		summary TEXT,
		file_size INTEGER NOT NULL,
		file_type TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		text TEXT NOT NULL,
		seq INTEGER NOT NULL,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_document_seq ON chunks(document_id, seq);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocumentWithChunks inserts the document and its chunks atomically.
func (s *SQLiteStorage) CreateDocumentWithChunks(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, content, summary, file_size, file_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Content, doc.Summary, doc.FileSize, doc.FileType, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_id, text, seq, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if c.CreatedAt.IsZero() {
			c.CreatedAt = doc.CreatedAt
		}
		var blob []byte
		if len(c.Embedding) > 0 {
			blob = vector.Float32SliceToBytes(c.Embedding)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Text, c.Seq, blob, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// GetDocument returns a document by id.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, summary, file_size, file_type, created_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Summary, &doc.FileSize, &doc.FileType, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns summaries of all documents, newest first.
func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.title, d.summary, d.file_size, d.file_type, d.created_at,
		        COUNT(c.id) AS chunks_count
		 FROM documents d
		 LEFT JOIN chunks c ON c.document_id = d.id
		 GROUP BY d.id
		 ORDER BY d.created_at DESC, d.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentSummary
	for rows.Next() {
		var d models.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.Summary, &d.FileSize, &d.FileType, &d.CreatedAt, &d.ChunksCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document; chunks go with it via cascade.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// GetChunk returns a single chunk with its embedding.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	var c models.Chunk
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, text, seq, embedding, created_at FROM chunks WHERE id = ?`, id,
	).Scan(&c.ID, &c.DocumentID, &c.Text, &c.Seq, &blob, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk %w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		c.Embedding = vector.BytesToFloat32Slice(blob)
	}
	return &c, nil
}

// GetChunks returns the chunks for the given ids, in the order requested.
// Unknown ids are skipped.
func (s *SQLiteStorage) GetChunks(ctx context.Context, ids []string) ([]models.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, text, seq, embedding, created_at FROM chunks
		 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]models.Chunk, len(ids))
	for rows.Next() {
		var c models.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Text, &c.Seq, &blob, &c.CreatedAt); err != nil {
			return nil, err
		}
		if len(blob) > 0 {
			c.Embedding = vector.BytesToFloat32Slice(blob)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// AllChunks returns every chunk with its embedding, ordered by document and
// sequence.
func (s *SQLiteStorage) AllChunks(ctx context.Context) ([]models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, text, seq, embedding, created_at FROM chunks
		 ORDER BY document_id, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var c models.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Text, &c.Seq, &blob, &c.CreatedAt); err != nil {
			return nil, err
		}
		if len(blob) > 0 {
			c.Embedding = vector.BytesToFloat32Slice(blob)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DocumentCount returns the number of documents.
func (s *SQLiteStorage) DocumentCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// ChunkCount returns the number of chunks.
func (s *SQLiteStorage) ChunkCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
