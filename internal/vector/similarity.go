package vector

// InnerProduct computes the dot product of two vectors. For unit-length
// vectors this equals cosine similarity. Mismatched lengths score over the
// shorter prefix.
func InnerProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
