// Package ratelimit wraps an embedding service with a token bucket so bulk
// ingestion stays under provider request quotas.
package ratelimit

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService throttles Embed and EmbedBatch calls on an inner service.
// Each call consumes one token; a batch counts as a single request.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// New wraps inner with a limiter of requestsPerSecond.
// The burst is the rate rounded up, with a minimum of one.
func New(inner driven.EmbeddingService, requestsPerSecond float64) *EmbeddingService {
	burst := int(math.Ceil(requestsPerSecond))
	if burst < 1 {
		burst = 1
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a token then delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token then delegates.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.inner.EmbedBatch(ctx, texts)
}

func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping is not throttled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
