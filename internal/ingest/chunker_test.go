package ingest

import (
	"strings"
	"testing"
)

func TestChunker_ShortTextSinglePiece(t *testing.T) {
	c, err := NewChunker(800, 120)
	if err != nil {
		t.Fatal(err)
	}
	pieces := c.Split("A short note.")
	if len(pieces) != 1 {
		t.Fatalf("got %d pieces, want 1", len(pieces))
	}
	if pieces[0].Text != "A short note." || pieces[0].Seq != 0 {
		t.Errorf("piece = %+v", pieces[0])
	}
}

func TestChunker_Empty(t *testing.T) {
	c, _ := NewChunker(800, 120)
	if pieces := c.Split("   \n\n  "); pieces != nil {
		t.Errorf("whitespace-only text should produce no pieces, got %d", len(pieces))
	}
}

func TestChunker_LongTextCoverage(t *testing.T) {
	c, _ := NewChunker(800, 120)
	// Roughly 2000 characters of sentence-shaped text.
	sentence := "The committee reviewed the proposal and requested further detail on the budget. "
	text := strings.Repeat(sentence, 25)
	pieces := c.Split(text)

	if len(pieces) != 3 {
		t.Fatalf("got %d pieces, want 3 for ~2000 chars at size 800", len(pieces))
	}
	for i, p := range pieces {
		n := len([]rune(p.Text))
		if n > 800 {
			t.Errorf("piece %d exceeds chunk size: %d runes", i, n)
		}
		if n < 400 {
			t.Errorf("piece %d suspiciously short: %d runes", i, n)
		}
		if p.Seq != i {
			t.Errorf("piece %d has seq %d", i, p.Seq)
		}
	}

	// Every sentence of the input must appear in some piece.
	joined := strings.Join(collectTexts(pieces), " ")
	if !strings.Contains(joined, "requested further detail") {
		t.Error("content lost during chunking")
	}
}

func TestChunker_Overlap(t *testing.T) {
	c, _ := NewChunker(200, 50)
	word := "alpha bravo charlie delta echo. "
	text := strings.Repeat(word, 20)
	pieces := c.Split(text)
	if len(pieces) < 2 {
		t.Fatal("expected multiple pieces")
	}
	// The tail of each piece should reappear at the head of the next.
	for i := 0; i < len(pieces)-1; i++ {
		tail := pieces[i].Text
		if len(tail) > 30 {
			tail = tail[len(tail)-30:]
		}
		overlapFound := false
		for _, w := range strings.Fields(tail) {
			if strings.Contains(pieces[i+1].Text[:min(len(pieces[i+1].Text), 80)], w) {
				overlapFound = true
				break
			}
		}
		if !overlapFound {
			t.Errorf("no overlap between piece %d and %d", i, i+1)
		}
	}
}

func TestChunker_SnapsToSentence(t *testing.T) {
	c, _ := NewChunker(100, 20)
	text := strings.Repeat("One two three four five six seven. ", 10)
	pieces := c.Split(text)
	for i, p := range pieces[:len(pieces)-1] {
		if !strings.HasSuffix(p.Text, ".") {
			t.Errorf("piece %d should end at a sentence boundary: %q", i, p.Text)
		}
	}
}

func TestChunker_SnapsToParagraph(t *testing.T) {
	c, _ := NewChunker(120, 20)
	para := strings.Repeat("word ", 18) // ~90 chars
	text := para + "\n\n" + para + "\n\n" + para
	pieces := c.Split(text)
	if len(pieces) < 2 {
		t.Fatal("expected multiple pieces")
	}
	// First cut lands on the paragraph break, not mid-word.
	if strings.Contains(pieces[0].Text, "\n\n") {
		t.Errorf("first piece crosses a paragraph break: %q", pieces[0].Text)
	}
}

func TestChunker_UnbreakableText(t *testing.T) {
	c, _ := NewChunker(50, 10)
	text := strings.Repeat("x", 200)
	pieces := c.Split(text)
	if len(pieces) < 4 {
		t.Fatalf("got %d pieces", len(pieces))
	}
	for i, p := range pieces {
		if len(p.Text) > 50 {
			t.Errorf("piece %d too long: %d", i, len(p.Text))
		}
	}
}

func TestNewChunker_Validation(t *testing.T) {
	if _, err := NewChunker(0, 0); err == nil {
		t.Error("zero size should be rejected")
	}
	if _, err := NewChunker(100, 100); err == nil {
		t.Error("overlap >= size should be rejected")
	}
	if _, err := NewChunker(100, -1); err == nil {
		t.Error("negative overlap should be rejected")
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID("doc1", 4); got != "doc1:0004" {
		t.Errorf("ChunkID = %s", got)
	}
	// Zero padding keeps lexical order aligned with sequence order.
	if ChunkID("d", 2) >= ChunkID("d", 10) {
		t.Error("chunk ids must sort in sequence order")
	}
}

func collectTexts(pieces []Piece) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}
