package embedder

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semdex/semdex/internal/embcache"
	"github.com/semdex/semdex/pkg/types"
)

// fakeProvider counts calls and returns vectors derived from text length.
type fakeProvider struct {
	dimension  int
	embedCalls int
	batchCalls int
	fail       bool
	badDim     bool
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	return f.vector(text)
}

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.fail {
		return nil, fmt.Errorf("backend down")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.vector(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeProvider) vector(text string) ([]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("backend down")
	}
	dim := f.dimension
	if f.badDim {
		dim++
	}
	vec := make([]float32, dim)
	vec[0] = float32(len(text))
	return vec, nil
}

func (f *fakeProvider) Dimension() int { return f.dimension }
func (f *fakeProvider) Name() string   { return "fake" }
func (f *fakeProvider) Close() error   { return nil }

func newTestService(t *testing.T, p Provider) *Service {
	t.Helper()
	cache, err := embcache.New(t.TempDir(), 100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return NewService(p, cache)
}

func TestServiceEmbed_EmptyTextZeroVector(t *testing.T) {
	p := &fakeProvider{dimension: 4}
	s := newTestService(t, p)

	for _, text := range []string{"", "   ", "\n\t"} {
		vec, err := s.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, make([]float32, 4), vec)
	}
	// The provider is never consulted for empty text.
	assert.Zero(t, p.embedCalls)
}

func TestServiceEmbed_CacheHitSkipsProvider(t *testing.T) {
	p := &fakeProvider{dimension: 4}
	s := newTestService(t, p)

	first, err := s.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, 1, p.embedCalls)

	second, err := s.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, 1, p.embedCalls, "second call must hit the cache")
	assert.Equal(t, first, second)
}

func TestServiceEmbed_ProviderFailure(t *testing.T) {
	s := newTestService(t, &fakeProvider{dimension: 4, fail: true})

	_, err := s.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmbeddingUnavailable)
}

func TestServiceEmbed_DimensionMismatch(t *testing.T) {
	s := newTestService(t, &fakeProvider{dimension: 4, badDim: true})

	_, err := s.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestServiceEmbedBatch_OrderAndMixedHits(t *testing.T) {
	p := &fakeProvider{dimension: 4}
	s := newTestService(t, p)

	// Warm the cache with one text.
	_, err := s.Embed(context.Background(), "cached")
	require.NoError(t, err)

	texts := []string{"cached", "", "fresh one", "fresh two"}
	vecs, err := s.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 4)

	assert.Equal(t, float32(len("cached")), vecs[0][0])
	assert.Equal(t, make([]float32, 4), vecs[1])
	assert.Equal(t, float32(len("fresh one")), vecs[2][0])
	assert.Equal(t, float32(len("fresh two")), vecs[3][0])

	// Only the two misses went to the provider, in one batch call.
	assert.Equal(t, 1, p.batchCalls)
}

func TestServiceEmbedBatch_AllCached(t *testing.T) {
	p := &fakeProvider{dimension: 4}
	s := newTestService(t, p)

	_, err := s.EmbedBatch(context.Background(), []string{"a text", "b text"})
	require.NoError(t, err)
	require.Equal(t, 1, p.batchCalls)

	_, err = s.EmbedBatch(context.Background(), []string{"a text", "b text"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.batchCalls, "fully cached batch must not call the provider")
}

func TestServiceEmbedBatch_ProviderFailure(t *testing.T) {
	s := newTestService(t, &fakeProvider{dimension: 4, fail: true})

	_, err := s.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmbeddingUnavailable)
}

func TestServiceEmbed_CacheWriteFailureReturnsVector(t *testing.T) {
	cache, err := embcache.New(t.TempDir(), 100)
	require.NoError(t, err)
	// Closing the persistent tier makes every cache write fail.
	require.NoError(t, cache.Close())

	p := &fakeProvider{dimension: 4}
	s := NewService(p, cache)

	vec, err := s.Embed(context.Background(), "hello world")
	require.NoError(t, err, "a cache write failure must not fail the embed")
	require.Len(t, vec, 4)
	assert.Equal(t, float32(len("hello world")), vec[0])
}

func TestServiceEmbedBatch_CacheWriteFailureReturnsVectors(t *testing.T) {
	cache, err := embcache.New(t.TempDir(), 100)
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	s := NewService(&fakeProvider{dimension: 4}, cache)

	vecs, err := s.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, float32(len("first")), vecs[0][0])
	assert.Equal(t, float32(len("second")), vecs[1][0])
}

func TestLocalProviderDeterministicUnitVectors(t *testing.T) {
	p := NewLocalProvider(384)

	a1, err := p.Embed(context.Background(), "some text")
	require.NoError(t, err)
	a2, err := p.Embed(context.Background(), "some text")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "other text")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Len(t, a1, 384)

	var norm float64
	for _, v := range a1 {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-3)
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}
