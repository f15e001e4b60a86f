// Package ingest turns uploaded files into persisted, indexed documents.
package ingest

import (
	"fmt"
	"strings"
)

// boundaryLookback is how far back from the nominal cut a chunk boundary may
// snap to land on a natural break.
const boundaryLookback = 160

// Chunker splits document text into overlapping pieces.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker producing pieces of at most size characters
// with the given overlap between consecutive pieces.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive")
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size)")
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Piece is one chunk of text with its position in the document.
type Piece struct {
	Text string
	Seq  int
}

// Split cuts text into pieces. Every character of the input is covered by at
// least one piece; consecutive pieces share the configured overlap. Cuts
// prefer a paragraph break, then a sentence end, then whitespace, searching
// backwards within the lookback window; otherwise they fall at the exact
// size. Text at most one chunk long comes back as a single piece.
func (c *Chunker) Split(text string) []Piece {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []Piece{{Text: text, Seq: 0}}
	}

	var pieces []Piece
	start := 0
	seq := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = snapBoundary(runes, start, end)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, Piece{Text: piece, Seq: seq})
			seq++
		}
		if end == len(runes) {
			break
		}
		next := end - c.overlap
		// The window must always move forward.
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return pieces
}

// snapBoundary finds the best cut position in (start, end], searching
// backwards at most boundaryLookback runes from end. Paragraph breaks win
// over sentence ends, sentence ends over plain whitespace.
func snapBoundary(runes []rune, start, end int) int {
	limit := end - boundaryLookback
	if limit < start+1 {
		limit = start + 1
	}

	sentence := -1
	space := -1
	for i := end - 1; i >= limit; i-- {
		if runes[i] == '\n' && i > 0 && runes[i-1] == '\n' {
			return i + 1
		}
		if sentence == -1 && isSentenceEnd(runes, i) {
			sentence = i + 1
		}
		if space == -1 && (runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t') {
			space = i + 1
		}
	}
	if sentence != -1 {
		return sentence
	}
	if space != -1 {
		return space
	}
	return end
}

// isSentenceEnd reports whether position i ends a sentence: terminal
// punctuation followed by whitespace or end of text.
func isSentenceEnd(runes []rune, i int) bool {
	switch runes[i] {
	case '.', '!', '?':
	default:
		return false
	}
	if i+1 >= len(runes) {
		return true
	}
	next := runes[i+1]
	return next == ' ' || next == '\n' || next == '\t'
}

// ChunkID builds the chunk identifier for a document and sequence number.
// The zero-padded ordinal keeps lexical order equal to document order.
func ChunkID(docID string, seq int) string {
	return fmt.Sprintf("%s:%04d", docID, seq)
}
