package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RemoteOptions configures the Remote embedder.
type RemoteOptions struct {
	// Model is sent with every request.
	Model string

	// APIKey, when set, is sent as a bearer token.
	APIKey string

	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client

	// RequestsPerSecond throttles outgoing requests. Zero disables
	// throttling.
	RequestsPerSecond float64

	// Burst is the throttle burst size. Defaults to 1 when throttling
	// is enabled.
	Burst int
}

// Remote calls an embedding HTTP service. The request is
// `POST {"model": ..., "input": ...}` and the response is expected to
// carry an "embedding" array of floats.
type Remote struct {
	endpoint string
	dim      int
	opts     RemoteOptions
	client   *http.Client
	limiter  *rate.Limiter
}

// NewRemote creates a remote embedder for the given endpoint, expecting
// vectors of the given dimensionality.
func NewRemote(endpoint string, dim int, optFns ...func(*RemoteOptions)) *Remote {
	opts := RemoteOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Remote{
		endpoint: endpoint,
		dim:      dim,
		opts:     opts,
		client:   client,
		limiter:  limiter,
	}
}

type embedRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed requests an embedding from the remote service.
func (r *Remote) Embed(ctx context.Context, text string) ([]float32, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(embedRequest{Model: r.opts.Model, Input: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.opts.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, msg)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}

	if len(out.Embedding) != r.dim {
		return nil, fmt.Errorf("embedding service returned %d dimensions, want %d", len(out.Embedding), r.dim)
	}

	return out.Embedding, nil
}

// Dimension returns the expected vector dimensionality.
func (r *Remote) Dimension() int {
	return r.dim
}
