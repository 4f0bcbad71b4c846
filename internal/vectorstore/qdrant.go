package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/pkg/types"
)

// Qdrant is a REST client to a Qdrant instance. It assumes cosine distance.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// NewQdrant builds a client from configuration.
func NewQdrant(cfg config.QdrantConfig) *Qdrant {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// PointID derives the stable UUIDv5 point ID for a segment. Re-indexing a
// segment always lands on the same point.
func PointID(segmentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(segmentID)).String()
}

func (q *Qdrant) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid vector dimension %d", types.ErrConfiguration, dimension)
	}

	// An existing collection must match the configured dimension.
	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := q.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", q.collection), nil, &info)
	if err == nil {
		if got := info.Result.Config.Params.Vectors.Size; got != dimension {
			return fmt.Errorf("%w: collection %s has dimension %d, expected %d",
				types.ErrConfiguration, q.collection, got, dimension)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collection), body, nil); err != nil {
		return fmt.Errorf("%w: create collection: %v", types.ErrIndexUnavailable, err)
	}
	return nil
}

func (q *Qdrant) UpsertBatch(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	reqPoints := make([]map[string]any, len(points))
	for i, p := range points {
		reqPoints[i] = map[string]any{
			"id":      PointID(p.SegmentID),
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": reqPoints}
	path := fmt.Sprintf("/collections/%s/points?wait=true", q.collection)
	if err := q.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("%w: upsert %d points: %v", types.ErrIndexUnavailable, len(points), err)
	}
	return nil
}

func (q *Qdrant) Query(ctx context.Context, vector []float32, limit int, threshold float64, filters map[string]any) ([]types.Candidate, error) {
	req := map[string]any{
		"vector":          vector,
		"limit":           limit,
		"score_threshold": threshold,
		"with_payload":    true,
	}
	if f := translateFilters(filters); f != nil {
		req["filter"] = f
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", q.collection)
	if err := q.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: search: %v", types.ErrIndexUnavailable, err)
	}

	candidates := make([]types.Candidate, 0, len(resp.Result))
	for _, r := range resp.Result {
		c := types.Candidate{Score: r.Score, Metadata: r.Payload}
		if v, ok := r.Payload["segment_id"].(string); ok {
			c.SegmentID = v
		}
		if v, ok := r.Payload["text"].(string); ok {
			c.Text = v
		}
		if v, ok := r.Payload["source_file"].(string); ok {
			c.SourceFile = v
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (q *Qdrant) DeleteBySourceFile(ctx context.Context, sourceFile string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "source_file", "match": map[string]any{"value": sourceFile}},
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", q.collection)
	if err := q.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("%w: delete by source file: %v", types.ErrIndexUnavailable, err)
	}
	return nil
}

func (q *Qdrant) Health(ctx context.Context) error {
	if err := q.do(ctx, http.MethodGet, "/collections", nil, nil); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexUnavailable, err)
	}
	return nil
}

func (q *Qdrant) Stats(ctx context.Context) (*Stats, error) {
	var resp struct {
		Result struct {
			PointsCount         int64  `json:"points_count"`
			IndexedVectorsCount int64  `json:"indexed_vectors_count"`
			Status              string `json:"status"`
			Config              struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := q.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", q.collection), nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: collection stats: %v", types.ErrIndexUnavailable, err)
	}
	return &Stats{
		Collection:    q.collection,
		PointsCount:   resp.Result.PointsCount,
		IndexedCount:  resp.Result.IndexedVectorsCount,
		Status:        resp.Result.Status,
		VectorSize:    resp.Result.Config.Params.Vectors.Size,
		DistanceModel: resp.Result.Config.Params.Vectors.Distance,
	}, nil
}

// translateFilters converts the metadata condition language into a Qdrant
// filter. A plain value is an exact match; {"range": {"gte": x, "lte": y}}
// is a numeric range. Conditions are ANDed via "must".
func translateFilters(filters map[string]any) map[string]any {
	if len(filters) == 0 {
		return nil
	}
	conditions := make([]map[string]any, 0, len(filters))
	for field, value := range filters {
		if m, ok := value.(map[string]any); ok {
			if r, ok := m["range"].(map[string]any); ok {
				rng := map[string]any{}
				if gte, ok := r["gte"]; ok {
					rng["gte"] = gte
				}
				if lte, ok := r["lte"]; ok {
					rng["lte"] = lte
				}
				conditions = append(conditions, map[string]any{"key": field, "range": rng})
				continue
			}
		}
		conditions = append(conditions, map[string]any{
			"key":   field,
			"match": map[string]any{"value": value},
		})
	}
	return map[string]any{"must": conditions}
}

// do issues one JSON request against the Qdrant REST API.
func (q *Qdrant) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.url+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s: %s: %s", method, path, resp.Status, string(data))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
