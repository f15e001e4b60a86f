package utils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 3); got != "hel..." {
		t.Errorf("Truncate: got %q", got)
	}
	if got := Truncate("hi", 10); got != "hi" {
		t.Errorf("Truncate short: got %q", got)
	}
	if got := Truncate("hi", 0); got != "hi" {
		t.Errorf("Truncate zero: got %q", got)
	}
}

func TestFirstWords(t *testing.T) {
	if got := FirstWords("a  b\nc d", 3); got != "a b c" {
		t.Errorf("FirstWords: got %q", got)
	}
	if got := FirstWords("one two", 10); got != "one two" {
		t.Errorf("FirstWords under cap: got %q", got)
	}
	if got := FirstWords("one", 0); got != "" {
		t.Errorf("FirstWords zero: got %q", got)
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if n := L2Norm(v); n < 0.999 || n > 1.001 {
		t.Errorf("norm after NormalizeL2 = %f", n)
	}
	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Error("zero vector should be unchanged")
	}
}
