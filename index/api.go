package index

// Hit is a single query match. Position is the insertion index of the matched
// vector and Score its cosine similarity to the query.
type Hit struct {
	Position int
	Score    float64
}

// Index defines an append-only vector index addressed by insertion position.
type Index interface {
	// Build replaces the index content with vectors, in order. All vectors
	// must share one dimension and have a non-zero norm.
	Build(vectors [][]float32) error

	// Add appends one vector; its position is the previous Len.
	Add(vector []float32) error

	// Query returns up to k hits ordered by descending score. Equal scores are
	// ordered by ascending position.
	Query(query []float32, k int) ([]Hit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the vector dimension, or 0 when the index is empty.
	Dim() int
}
