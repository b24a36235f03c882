package vector

import (
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// Dot computes the dot product of two equally sized vectors in float64.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 { return math.Sqrt(Dot(v, v)) }

// Normalize returns v scaled to unit length. It fails on zero-norm input
// rather than producing NaN values.
func Normalize(v []float32) ([]float32, error) {
	n := Norm(v)
	if n == 0 {
		return nil, ErrZeroNorm
	}
	out := make([]float32, len(v))
	for i := range v {
		out[i] = float32(float64(v[i]) / n)
	}
	return out, nil
}

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different lengths or if either vector
// has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: cosine similarity %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: cosine similarity on empty vectors", ErrEmptyEmbedding)
	}
	va := search.Float32s(a)
	ma := va.Magnitude()
	mb := search.Float32s(b).Magnitude()
	if ma == 0 || mb == 0 {
		return 0, fmt.Errorf("%w: cosine similarity", ErrZeroNorm)
	}
	return 1 - float64(va.CosineDistance(b)), nil
}

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns an error if the vectors have different lengths.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: L2 distance %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
