package embedding

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"strings"
)

// Mock is a deterministic embedder for tests and offline development.
// The same text always maps to the same vector, so similarity relations
// are stable across runs. Blank text maps to the zero vector.
type Mock struct {
	dim int
}

// NewMock creates a mock embedder with the given dimensionality.
func NewMock(dim int) *Mock {
	return &Mock{dim: dim}
}

// Embed returns a pseudo-random vector seeded by the text content.
// Components are in [-1, 1).
func (m *Mock) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, m.dim)

	if strings.TrimSpace(text) == "" {
		return vector, nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	rng := rand.New(rand.NewPCG(seed, seed))
	for i := range vector {
		vector[i] = float32(rng.Float64()*2 - 1)
	}

	return vector, nil
}

// Dimension returns the vector dimensionality.
func (m *Mock) Dimension() int {
	return m.dim
}
