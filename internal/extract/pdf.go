package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDF extracts text from PDF bytes. The primary strategy walks pages
// with ledongthuc/pdf; when it errors or yields near-empty text (common for
// scanned PDFs with a thin text layer), the lu4p/cat fallback is tried.
func extractPDF(content []byte) (string, error) {
	text, err := extractPDFPrimary(content)
	if err == nil && usable(text) {
		return text, nil
	}
	fallbackText, fallbackErr := catFallback(content, ".pdf")
	if fallbackErr == nil && usable(fallbackText) {
		return fallbackText, nil
	}
	// Neither strategy produced usable text. Prefer reporting the primary
	// error; an empty string falls through to ErrNoText in Extract.
	if err != nil {
		return "", fmt.Errorf("extract PDF: %w", err)
	}
	return text, nil
}

func extractPDFPrimary(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}
