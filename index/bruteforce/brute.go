package bruteforce

import (
	"fmt"
	"sort"

	"github.com/viant/videostore/index"
	"github.com/viant/videostore/vector"
)

// Index is a brute-force vector index implementing cosine similarity over
// rows normalized once at insertion time.
type Index struct {
	units [][]float32
	dim   int
}

// New creates an empty index.
func New() *Index { return &Index{} }

// Build normalizes and loads vectors, replacing any previous content. On
// error the index is left unchanged.
func (i *Index) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		i.units, i.dim = nil, 0
		return nil
	}
	dim := len(vectors[0])
	units := make([][]float32, len(vectors))
	for j, v := range vectors {
		u, err := unit(v, dim)
		if err != nil {
			return fmt.Errorf("bruteforce: row %d: %w", j, err)
		}
		units[j] = u
	}
	i.units = units
	i.dim = dim
	return nil
}

// Add normalizes and appends vector.
func (i *Index) Add(v []float32) error {
	u, err := unit(v, i.dim)
	if err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	if i.dim == 0 {
		i.dim = len(v)
	}
	i.units = append(i.units, u)
	return nil
}

// Query returns top-k by cosine similarity.
func (i *Index) Query(query []float32, k int) ([]index.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("bruteforce: k must be positive, got %d", k)
	}
	if len(i.units) == 0 {
		return []index.Hit{}, nil
	}
	q, err := unit(query, i.dim)
	if err != nil {
		return nil, fmt.Errorf("bruteforce: query: %w", err)
	}
	hits := make([]index.Hit, len(i.units))
	for j, u := range i.units {
		hits[j] = index.Hit{Position: j, Score: vector.Dot(q, u)}
	}
	// hits start in position order, so a stable sort keeps ties ascending.
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.units) }

// Dim returns the indexed dimension.
func (i *Index) Dim() int { return i.dim }

func unit(v []float32, dim int) ([]float32, error) {
	if err := vector.Validate(v, dim); err != nil {
		return nil, err
	}
	return vector.Normalize(v)
}

// Ensure Index satisfies the index.Index interface.
var _ index.Index = (*Index)(nil)
