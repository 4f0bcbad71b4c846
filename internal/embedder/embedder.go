package embedder

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/semdex/semdex/internal/embcache"
	"github.com/semdex/semdex/pkg/types"
)

// Provider generates embeddings against one backend. Implementations do
// their own transport-level retries; a returned error means the backend is
// unavailable for this request.
type Provider interface {
	// Embed generates a single embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call,
	// preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension this provider produces.
	Dimension() int

	// Name returns the provider name for logging and status reporting.
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// Service fronts a Provider with the two-tier embedding cache. All
// pipeline code embeds through the Service, never a Provider directly.
type Service struct {
	provider Provider
	cache    *embcache.Cache
}

// NewService wraps provider with cache. A nil cache disables caching.
func NewService(provider Provider, cache *embcache.Cache) *Service {
	return &Service{provider: provider, cache: cache}
}

// Embed returns the vector for text. Text that is empty after trimming
// yields a zero vector of the provider dimension; it is neither sent to
// the provider nor cached. Provider failures are reported as
// types.ErrEmbeddingUnavailable.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, s.provider.Dimension()), nil
	}

	if s.cache != nil {
		if vec, ok := s.cache.Get(text); ok {
			return vec, nil
		}
	}

	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrEmbeddingUnavailable, s.provider.Name(), err)
	}
	if err := s.checkDimension(vec); err != nil {
		return nil, err
	}

	if s.cache != nil {
		// The cache is an accelerator; a failed write must not lose a
		// vector the provider already produced.
		if err := s.cache.Put(text, vec); err != nil {
			log.Printf("failed to cache embedding: %v", err)
		}
	}
	return vec, nil
}

// EmbedBatch returns one vector per input text, in input order. Cached
// texts are served from the cache; only the misses go to the provider, in
// a single batch call. Empty texts yield zero vectors.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = make([]float32, s.provider.Dimension())
			continue
		}
		if s.cache != nil {
			if vec, ok := s.cache.Get(text); ok {
				out[i] = vec
				continue
			}
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := s.provider.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrEmbeddingUnavailable, s.provider.Name(), err)
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("%w: %s returned %d vectors for %d texts",
			types.ErrEmbeddingUnavailable, s.provider.Name(), len(vecs), len(missTexts))
	}

	for j, vec := range vecs {
		if err := s.checkDimension(vec); err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Put(missTexts[j], vec); err != nil {
				log.Printf("failed to cache embedding: %v", err)
			}
		}
		out[missIdx[j]] = vec
	}
	return out, nil
}

// Dimension returns the provider's vector dimension.
func (s *Service) Dimension() int {
	return s.provider.Dimension()
}

// ProviderName returns the wrapped provider's name.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Close releases the provider. The cache has its own lifecycle.
func (s *Service) Close() error {
	return s.provider.Close()
}

func (s *Service) checkDimension(vec []float32) error {
	if want := s.provider.Dimension(); len(vec) != want {
		return fmt.Errorf("%w: provider %s returned dimension %d, expected %d",
			types.ErrConfiguration, s.provider.Name(), len(vec), want)
	}
	return nil
}
