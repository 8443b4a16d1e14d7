// Package embedding exposes the model provider used by the semantic duplicate
// layer. The underlying client is built lazily on first use: startup stays
// cheap and a misconfigured provider only disables the semantic layer instead
// of failing the process.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

// Factory builds the concrete embedder chain (transport plus decorators) and
// may probe the provider for reachability. It is invoked at most once.
type Factory func(ctx context.Context) (domain.Embedder, error)

// Provider is a thread-safe, lazily-initialized embedder. Concurrent first
// callers block until the single initialization completes; an initialization
// failure is sticky and reported as domain.ErrEmbeddingUnavailable on every
// subsequent call.
type Provider struct {
	factory  Factory
	dim      int
	logger   *zap.Logger
	initOnce sync.Once
	embedder domain.Embedder
	initErr  error
	ready    atomic.Bool
}

// NewProvider creates an uninitialized provider. dim is the expected vector
// dimensionality; a provider returning a different width is a configuration
// error and poisons the provider.
func NewProvider(factory Factory, dim int, logger *zap.Logger) *Provider {
	return &Provider{factory: factory, dim: dim, logger: logger}
}

// Embed returns the L2-normalized embedding of text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.initOnce.Do(func() { p.initialize(ctx) })
	if p.initErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, p.initErr)
	}

	result, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	vec := result.Embedding
	if p.dim > 0 && len(vec) != p.dim {
		return nil, fmt.Errorf("provider returned %d dims, expected %d: %w",
			len(vec), p.dim, domain.ErrVectorDimMismatch)
	}

	return Normalize(vec), nil
}

// Available reports whether the provider initialized successfully. False
// before the first Embed call and after a failed initialization. Safe to call
// concurrently with Embed.
func (p *Provider) Available() bool {
	return p.ready.Load()
}

func (p *Provider) initialize(ctx context.Context) {
	embedder, err := p.factory(ctx)
	if err != nil {
		p.initErr = err
		p.logger.Warn("Embedding model initialization failed, semantic layer disabled",
			zap.Error(err))
		return
	}
	p.embedder = embedder
	p.ready.Store(true)
	p.logger.Info("Embedding model initialized", zap.Int("dimensions", p.dim))
}

// Normalize scales the vector to unit L2 norm so that inner-product search
// equals cosine similarity. A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return vec
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, f := range vec {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
