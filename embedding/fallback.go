package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Fallback tries a chain of embedders in order until one succeeds.
// Typical use is a remote provider backed by a local Mock, so indexing
// keeps working when the embedding service is down. All embedders must
// share the same dimensionality.
type Fallback struct {
	chain []Embedder
}

// NewFallback creates a fallback chain. Panics if the chain is empty or
// dimensions disagree, both programming errors.
func NewFallback(chain ...Embedder) *Fallback {
	if len(chain) == 0 {
		panic("embedding: empty fallback chain")
	}

	dim := chain[0].Dimension()
	for _, e := range chain[1:] {
		if e.Dimension() != dim {
			panic(fmt.Sprintf("embedding: dimension mismatch in fallback chain: %d vs %d", e.Dimension(), dim))
		}
	}

	return &Fallback{chain: chain}
}

// Embed returns the first successful embedding. A canceled context
// stops the chain; provider errors accumulate into the returned error
// when every provider fails.
func (f *Fallback) Embed(ctx context.Context, text string) ([]float32, error) {
	var errs []error

	for _, e := range f.chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := e.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}

		errs = append(errs, err)
	}

	return nil, fmt.Errorf("all embedders failed: %w", errors.Join(errs...))
}

// Dimension returns the chain's vector dimensionality.
func (f *Fallback) Dimension() int {
	return f.chain[0].Dimension()
}
