package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/semdex/semdex/pkg/types"
)

// Provider names and defaults
const (
	ProviderOpenAI = "openai"
	ProviderJina   = "jina"
	ProviderLocal  = "local"

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "text-embedding-3-small"
	DefaultJinaBaseURL   = "https://api.jina.ai/v1"
	DefaultJinaModel     = "jina-embeddings-v3"

	LocalDimension = 384

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// HTTPProvider talks to an OpenAI-compatible embeddings endpoint. Jina's
// API uses the same request and response shape, so a single implementation
// covers both.
type HTTPProvider struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	httpClient *http.Client
}

// NewHTTPProvider creates a provider for an OpenAI-compatible API at
// baseURL. dimension is the expected vector size for the chosen model.
func NewHTTPProvider(name, baseURL, apiKey, model string, dimension int, timeout time.Duration) (*HTTPProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: provider %s requires an API key", types.ErrConfiguration, name)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		name:      name,
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("provider %s: no embeddings returned", p.name)
	}
	return vecs[0], nil
}

func (p *HTTPProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := p.callWithRetry(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("provider %s after %d attempts: %w", p.name, MaxRetries, err)
	}
	return vecs, nil
}

// callWithRetry issues the API call up to MaxRetries times, backing off
// exponentially between attempts. Context cancellation stops the retry
// loop immediately.
func (p *HTTPProvider) callWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	delay := time.Duration(InitialBackoffMs) * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		vecs, err := p.callAPI(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if attempt == MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * BackoffMultiplier)
		if ceiling := time.Duration(MaxBackoffMs) * time.Millisecond; delay > ceiling {
			delay = ceiling
		}
	}
	return nil, lastErr
}

func (p *HTTPProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]any{
		"input": texts,
		"model": p.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(apiResp.Data), len(texts))
	}

	// The API may return entries out of order; index places them.
	vecs := make([][]float32, len(texts))
	for _, d := range apiResp.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}

func (p *HTTPProvider) Dimension() int {
	return p.dimension
}

func (p *HTTPProvider) Name() string {
	return p.name
}

func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider derives deterministic unit vectors from a content hash.
// It exists for development and tests; similarity scores from it are
// meaningless.
type LocalProvider struct {
	dimension int
}

// NewLocalProvider creates a local provider with the given dimension
// (LocalDimension when <= 0).
func NewLocalProvider(dimension int) *LocalProvider {
	if dimension <= 0 {
		dimension = LocalDimension
	}
	return &LocalProvider{dimension: dimension}
}

func (l *LocalProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, l.dimension)
	// Stretch the 32 hash bytes across the vector by rehashing with a
	// counter suffix.
	seed := []byte(text)
	for off := 0; off < l.dimension; off += sha256.Size {
		h := sha256.Sum256(append(seed, byte(off/sha256.Size)))
		for i := 0; i < sha256.Size && off+i < l.dimension; i++ {
			vec[off+i] = float32(h[i])/127.5 - 1.0
		}
	}
	return NormalizeVector(vec), nil
}

func (l *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := l.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (l *LocalProvider) Dimension() int {
	return l.dimension
}

func (l *LocalProvider) Name() string {
	return ProviderLocal
}

func (l *LocalProvider) Close() error {
	return nil
}

// NormalizeVector normalizes a vector to unit length (for cosine similarity)
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
