package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestExtract_PlainText(t *testing.T) {
	e := NewExtractor()
	text, err := e.Extract([]byte("hello   world\n\n\nnext paragraph"), "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello world\n\nnext paragraph" {
		t.Errorf("got %q", text)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract([]byte("x"), "sheet.xlsx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	_, err = e.Extract([]byte("x"), "noext")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for missing extension, got %v", err)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract([]byte("   \n\t  "), "empty.txt")
	if !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx", ".txt", ".md", ".PDF"} {
		if !Supported(ext) {
			t.Errorf("%s should be supported", ext)
		}
	}
	for _, ext := range []string{".xlsx", ".doc", ".png", ""} {
		if Supported(ext) {
			t.Errorf("%s should not be supported", ext)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a  b\tc", "a b c"},
		{"  leading and trailing  ", "leading and trailing"},
		{"para one\n\n\npara two", "para one\n\npara two"},
		{"line\nwrap", "line wrap"},
		{"ctrl\x00char\x07s", "ctrlchars"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// buildDocx assembles a minimal .docx (zip with word/document.xml) in memory.
func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(bodyXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtract_DOCX(t *testing.T) {
	long := strings.Repeat("the quick brown fox ", 4)
	data := buildDocx(t, `<w:document><w:body><w:p w:rsidR="00A">`+
		`<w:r><w:t>`+long+`</w:t></w:r>`+
		`<w:r><w:t xml:space="preserve">jumps over</w:t></w:r>`+
		`</w:p></w:body></w:document>`)
	e := NewExtractor()
	text, err := e.Extract(data, "report.docx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "quick brown fox") || !strings.Contains(text, "jumps over") {
		t.Errorf("docx text missing runs: %q", text)
	}
}

func TestExtract_PDFGarbage(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract([]byte("not a pdf at all"), "broken.pdf"); err == nil {
		t.Error("expected error for garbage PDF bytes")
	}
}

func TestUsable(t *testing.T) {
	if usable("short") {
		t.Error("short text should not be usable")
	}
	if !usable(strings.Repeat("word ", 20)) {
		t.Error("long text should be usable")
	}
}
