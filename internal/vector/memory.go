package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force inner-product index. A linear scan is the
// design at this scale; the Index contract leaves room for an ANN structure
// later.
type MemoryIndex struct {
	dimensions int
	entries    []Entry
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Add appends entries to the index. Vectors are copied.
func (m *MemoryIndex) Add(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, e.Vector)
		m.entries = append(m.entries, Entry{ChunkID: e.ChunkID, DocID: e.DocID, Vector: vec})
	}
	return nil
}

// TopK returns the k highest-scoring entries for query in descending score
// order; equal scores order by ascending chunk ID. An empty index (or a
// filter matching nothing) returns an empty result.
func (m *MemoryIndex) TopK(ctx context.Context, query []float32, k int, filterDocID string) ([]Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	results := make([]Result, 0, len(m.entries))
	for _, e := range m.entries {
		if filterDocID != "" && e.DocID != filterDocID {
			continue
		}
		results = append(results, Result{ChunkID: e.ChunkID, DocID: e.DocID, Score: InnerProduct(query, e.Vector)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// RemoveDocument drops all entries for docID by rebuilding the slice.
func (m *MemoryIndex) RemoveDocument(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.DocID != docID {
			kept = append(kept, e)
		}
	}
	// Zero the tail so removed vectors are collectible.
	for i := len(kept); i < len(m.entries); i++ {
		m.entries[i] = Entry{}
	}
	m.entries = kept
	return nil
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (4), n (4), then per entry: chunkID len (4), chunkID,
// docID len (4), docID, vector (dimensions*4, little-endian float32).
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range m.entries {
		if err := writeString(f, e.ChunkID); err != nil {
			return fmt.Errorf("write chunk id: %w", err)
		}
		if err := writeString(f, e.DocID); err != nil {
			return fmt.Errorf("write doc id: %w", err)
		}
		if _, err := f.Write(Float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// A missing file is not an error; the index is left unchanged.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	entries := make([]Entry, 0, n)
	buf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		chunkID, err := readString(f)
		if err != nil {
			return fmt.Errorf("read chunk id: %w", err)
		}
		docID, err := readString(f)
		if err != nil {
			return fmt.Errorf("read doc id: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		entries = append(entries, Entry{ChunkID: chunkID, DocID: docID, Vector: BytesToFloat32Slice(buf)})
	}
	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func writeString(f *os.File, s string) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := f.WriteString(s)
	return err
}

func readString(f *os.File) (string, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(f, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// Float32SliceToBytes encodes s as little-endian float32 bytes. Shared with
// storage, which persists chunk embeddings in the same format.
func Float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

// BytesToFloat32Slice decodes little-endian float32 bytes.
func BytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
