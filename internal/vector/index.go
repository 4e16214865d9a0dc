// Package vector provides exact similarity search over normalized
// embeddings.
package vector

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var ErrDimension = errors.New("vector dimension mismatch")

// Hit is one search result: the position of the vector in insertion order
// and its inner product with the query. Both sides are unit length, so the
// score is the cosine similarity.
type Hit struct {
	ID    int
	Score float32
}

// Index is a flat inner-product index. Vectors are L2-normalized on insert.
// It is safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	dim  int
	vecs [][]float32
}

// NewIndex returns an index for vectors of length dim. A zero dim is fixed
// by the first insert.
func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

func (x *Index) Dim() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vecs)
}

// Add stores vecs and returns their IDs. Either all vectors are added or
// none.
func (x *Index) Add(vecs ...[]float32) ([]int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dim
	normed := make([][]float32, len(vecs))
	for i, v := range vecs {
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim || dim == 0 {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(v), dim)
		}
		normed[i] = normalize(v)
	}
	x.dim = dim

	ids := make([]int, len(normed))
	for i, v := range normed {
		ids[i] = len(x.vecs)
		x.vecs = append(x.vecs, v)
	}
	return ids, nil
}

// Search returns up to k hits ordered by descending score.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || len(x.vecs) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(query), x.dim)
	}
	q := normalize(query)

	hits := make([]Hit, len(x.vecs))
	for i, v := range x.vecs {
		hits[i] = Hit{ID: i, Score: dot(q, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, f := range v {
		out[i] = float32(float64(f) * inv)
	}
	return out
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
