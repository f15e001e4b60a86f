// Package vector provides the in-memory similarity index over chunk embeddings.
package vector

import "context"

// Entry is one indexed chunk embedding. Vector must be unit length.
type Entry struct {
	ChunkID string
	DocID   string
	Vector  []float32
}

// Result is a single similarity hit.
type Result struct {
	ChunkID string
	DocID   string
	// Score is the inner product with the query (cosine similarity for
	// normalized vectors).
	Score float64
}

// Index holds chunk embeddings and answers top-K nearest-neighbor queries.
// The contract is exact: results in non-increasing score order, ties broken
// by ascending chunk ID, an empty index yields an empty result. Approximate
// implementations may be swapped in later as long as they keep the same
// inputs, outputs, and ordering semantics for exact results.
type Index interface {
	Add(ctx context.Context, entries []Entry) error
	// TopK returns the k best matches for query; filterDocID restricts the
	// scan to a single document when non-empty.
	TopK(ctx context.Context, query []float32, k int, filterDocID string) ([]Result, error)
	// RemoveDocument drops every entry belonging to docID.
	RemoveDocument(ctx context.Context, docID string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}
