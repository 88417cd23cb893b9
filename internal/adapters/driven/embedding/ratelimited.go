// Package embedding provides decorators shared by the embedding
// provider adapters.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// RateLimited wraps an embedding service with a client-side request
// cap so bulk ingestion stays under provider rate limits. Each
// embedded text costs one permit; adapters that fan a batch out into
// one request per text are metered the same as true batch APIs.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimited caps embedding traffic at roughly rps texts per
// second with the given burst. A non-positive rps disables limiting
// and returns the inner service unwrapped.
func NewRateLimited(inner driven.EmbeddingService, rps float64, burst int) driven.EmbeddingService {
	if rps <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for a permit, then delegates.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return r.inner.Embed(ctx, text)
}

// EmbedQuery waits for a permit, then delegates.
func (r *RateLimited) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	return r.inner.EmbedQuery(ctx, query)
}

// EmbedBatch waits for one permit per text, then delegates the whole
// batch. Waiting up front smooths the burst without splitting the
// provider call.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for range texts {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}
	}
	return r.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's embedding vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates without consuming a permit. Connectivity checks are
// not embedding traffic.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the wrapped service's resources.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
