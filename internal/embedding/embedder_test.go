package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()
	a, err := e.Embed(ctx, "the exam is on May 5th")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "the exam is on May 5th")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d: %f vs %f", i, a[i], b[i])
		}
	}
	c, _ := e.Embed(ctx, "something else entirely")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should not share an embedding")
	}
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	e := NewMockEmbedder(384)
	emb, err := e.Embed(context.Background(), "normalization check")
	if err != nil {
		t.Fatal(err)
	}
	if len(emb) != 384 {
		t.Fatalf("dimensions: got %d", len(emb))
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("norm = %f, want 1.0", norm)
	}
}

func TestMockEmbedder_Batch(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	texts := []string{"one", "two", "three"}
	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 3 {
		t.Fatalf("batch size: got %d", len(batch))
	}
	single, _ := e.Embed(ctx, "two")
	for i := range single {
		if batch[1][i] != single[i] {
			t.Fatal("batch embedding differs from single embedding for same text")
		}
	}
}

func TestCache_LRU(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be cached")
	}
	// "b" is now least recently used and should be evicted.
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("len: got %d", c.Len())
	}
}
