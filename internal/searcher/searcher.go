package searcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/internal/vectorstore"
	"github.com/semdex/semdex/pkg/types"
)

// Request limits
const (
	DefaultLimit = 10
	MaxLimit     = 100

	DefaultThreshold = 0.5
)

// Request contains parameters for one search.
type Request struct {
	Query string

	// Limit caps the number of results. Zero means the configured
	// default; values above MaxLimit are reduced to it.
	Limit int

	// Threshold is the minimum similarity score. Zero means the
	// configured default.
	Threshold float64

	// Filters restricts candidates by metadata. Filtered requests bypass
	// the query cache entirely.
	Filters map[string]any
}

// Response contains ranked results and execution metadata.
type Response struct {
	Results  []types.RankedResult
	Total    int
	CacheHit bool
	Duration time.Duration

	// StageTimings records elapsed time per pipeline stage, keyed
	// "embed", "vector_query", and "rank". Empty on a cache hit.
	StageTimings map[string]time.Duration
}

// Searcher runs the search pipeline: validate, cache lookup, embed, query
// the vector index, rank, cache store.
type Searcher struct {
	embedder *embedder.Service
	index    vectorstore.Index
	ranker   *Ranker
	cache    *queryCache

	defaultLimit     int
	defaultThreshold float64
	maxQueryLength   int
}

// New creates a Searcher with the given collaborators and search defaults.
func New(emb *embedder.Service, index vectorstore.Index, cfg config.SearchConfig) *Searcher {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	defaultThreshold := cfg.ScoreThreshold
	if defaultThreshold == 0 {
		defaultThreshold = DefaultThreshold
	}
	return &Searcher{
		embedder:         emb,
		index:            index,
		ranker:           NewRanker(),
		cache:            newQueryCache(time.Duration(cfg.QueryCacheTTLSec)*time.Second, cfg.QueryCacheSize),
		defaultLimit:     defaultLimit,
		defaultThreshold: defaultThreshold,
		maxQueryLength:   cfg.MaxQueryLength,
	}
}

// Search executes the pipeline for req. The query is trimmed before any
// other processing; an empty or oversized query fails with
// types.ErrQuery before any stage runs.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	query, err := s.validate(&req)
	if err != nil {
		return nil, err
	}

	cacheable := len(req.Filters) == 0
	key := querySignature(query, req.Limit, req.Threshold)
	if cacheable {
		if results, ok := s.cache.get(key); ok {
			return &Response{
				Results:  results,
				Total:    len(results),
				CacheHit: true,
				Duration: time.Since(start),
			}, nil
		}
	}

	timings := make(map[string]time.Duration, 3)

	embedStart := time.Now()
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	timings["embed"] = time.Since(embedStart)

	queryStart := time.Now()
	candidates, err := s.index.Query(ctx, vector, req.Limit, req.Threshold, req.Filters)
	if err != nil {
		return nil, err
	}
	timings["vector_query"] = time.Since(queryStart)

	rankStart := time.Now()
	results := s.ranker.Rank(candidates, query)
	timings["rank"] = time.Since(rankStart)

	if cacheable && len(results) > 0 {
		s.cache.put(key, results)
	}

	return &Response{
		Results:      results,
		Total:        len(results),
		Duration:     time.Since(start),
		StageTimings: timings,
	}, nil
}

// validate normalizes the request in place and returns the trimmed query.
func (s *Searcher) validate(req *Request) (string, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "", fmt.Errorf("%w: empty query", types.ErrQuery)
	}
	if s.maxQueryLength > 0 && len(query) > s.maxQueryLength {
		return "", fmt.Errorf("%w: query length %d exceeds maximum %d", types.ErrQuery, len(query), s.maxQueryLength)
	}

	if req.Limit <= 0 {
		req.Limit = s.defaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if req.Threshold == 0 {
		req.Threshold = s.defaultThreshold
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return "", fmt.Errorf("%w: threshold %g outside [0, 1]", types.ErrQuery, req.Threshold)
	}

	return query, nil
}

// ClearQueryCache empties the query cache and returns the number of
// entries released.
func (s *Searcher) ClearQueryCache() int {
	return s.cache.clear()
}

// QueryCacheLen reports the query cache occupancy.
func (s *Searcher) QueryCacheLen() int {
	return s.cache.len()
}
