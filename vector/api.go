package vector

import (
	"errors"
	"fmt"
	"math"
)

// Validation errors returned by Validate and the distance functions. Callers
// match them with errors.Is.
var (
	ErrEmptyEmbedding    = errors.New("vector: empty embedding")
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")
	ErrZeroNorm          = errors.New("vector: zero-norm embedding")
	ErrNonFinite         = errors.New("vector: non-finite embedding value")
)

// Embedding is a dense feature vector describing one video, or one named
// asset of a video such as its visual track.
type Embedding []float32

// Clone returns a copy that does not share the backing array.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// Validate checks that vec can take part in cosine similarity. When dim is
// positive the vector must have exactly that many elements; dim <= 0 accepts
// any non-empty length.
func Validate(vec []float32, dim int) error {
	if len(vec) == 0 {
		return ErrEmptyEmbedding
	}
	if dim > 0 && len(vec) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), dim)
	}
	for i, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w at position %d", ErrNonFinite, i)
		}
	}
	if Norm(vec) == 0 {
		return ErrZeroNorm
	}
	return nil
}
