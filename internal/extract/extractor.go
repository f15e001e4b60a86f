// Package extract provides text extraction from uploaded document files.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// ErrUnsupportedFormat is returned for file extensions outside the accepted set.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoText is returned when every extraction strategy yields empty text,
// e.g. for image-only (scanned) PDFs.
var ErrNoText = errors.New("no text could be extracted")

// minUsableText is the threshold (non-space characters) below which a primary
// extraction result is considered empty and the fallback strategy is tried.
const minUsableText = 32

// Extractor extracts normalized plain text from document bytes.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether the file extension is in the accepted set.
// ext includes the leading dot and is matched case-insensitively.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".txt", ".md":
		return true
	}
	return false
}

// Extract returns the normalized UTF-8 text of content, dispatching on the
// extension of fileName. PDF and DOCX run a primary strategy with a fallback
// when the primary yields empty or near-empty text. Returns
// ErrUnsupportedFormat for unrecognized extensions and ErrNoText when all
// strategies come back empty.
func (e *Extractor) Extract(content []byte, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".txt", ".md":
		text, err = extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}
	text = Normalize(text)
	if text == "" {
		return "", fmt.Errorf("%w from %s", ErrNoText, fileName)
	}
	return text, nil
}

// Normalize collapses runs of whitespace to single spaces (keeping paragraph
// breaks as "\n\n"), strips control characters, and trims the result.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	newlines := 0
	spacePending := false
	for _, r := range text {
		switch {
		case r == '\n':
			newlines++
			spacePending = false
		case unicode.IsSpace(r):
			if newlines == 0 {
				spacePending = true
			}
		case unicode.IsControl(r):
			// drop
		default:
			if newlines >= 2 && b.Len() > 0 {
				b.WriteString("\n\n")
			} else if (newlines == 1 || spacePending) && b.Len() > 0 {
				b.WriteByte(' ')
			}
			newlines = 0
			spacePending = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// usable reports whether text has enough non-space characters to be
// considered a successful extraction.
func usable(text string) bool {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
			if n >= minUsableText {
				return true
			}
		}
	}
	return false
}
