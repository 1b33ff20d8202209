// Package embedding turns text into vectors for indexing and querying.
//
// The package ships a deterministic Mock for tests and offline use, a
// Remote provider speaking a JSON HTTP protocol, and a Fallback chain
// that tries providers in order. All providers implement Embedder.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Embedder produces a fixed-dimension vector for a piece of text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed returns the embedding of text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the dimensionality of produced vectors.
	Dimension() int
}

// Batch embeds texts concurrently, preserving order. concurrency caps
// the number of in-flight requests; values below 1 mean 4.
func Batch(ctx context.Context, e Embedder, texts []string, concurrency int) ([][]float32, error) {
	if concurrency < 1 {
		concurrency = 4
	}

	vectors := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, text := range texts {
		g.Go(func() error {
			v, err := e.Embed(ctx, text)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			vectors[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}
