package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/pkg/types"
)

func newTestQdrant(t *testing.T, handler http.HandlerFunc) *Qdrant {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewQdrant(config.QdrantConfig{
		URL:        srv.URL,
		Collection: "documents",
	})
}

func TestPointID(t *testing.T) {
	// Stable across calls, valid UUID, distinct per segment.
	first := PointID("doc_0001")
	assert.Equal(t, first, PointID("doc_0001"))
	assert.NotEqual(t, first, PointID("doc_0002"))

	_, err := uuid.Parse(first)
	assert.NoError(t, err)
}

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	var created bool
	q := newTestQdrant(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			http.Error(w, `{"status":{"error":"not found"}}`, http.StatusNotFound)
		case r.Method == http.MethodPut:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			vectors := body["vectors"].(map[string]any)
			assert.EqualValues(t, 384, vectors["size"])
			assert.Equal(t, "Cosine", vectors["distance"])
			created = true
			_, _ = w.Write([]byte(`{"result":true}`))
		}
	})

	require.NoError(t, q.EnsureCollection(context.Background(), 384))
	assert.True(t, created)
}

func TestEnsureCollection_DimensionMismatch(t *testing.T) {
	q := newTestQdrant(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"config":{"params":{"vectors":{"size":768}}}}}`))
	})

	err := q.EnsureCollection(context.Background(), 384)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestEnsureCollection_InvalidDimension(t *testing.T) {
	q := NewQdrant(config.QdrantConfig{URL: "http://unused", Collection: "documents"})
	err := q.EnsureCollection(context.Background(), 0)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestUpsertBatch(t *testing.T) {
	var got struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	q := newTestQdrant(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/documents/points", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":{"status":"acknowledged"}}`))
	})

	err := q.UpsertBatch(context.Background(), []Point{{
		SegmentID: "doc_0000",
		Vector:    []float32{0.1, 0.2},
		Payload:   map[string]any{"text": "hello"},
	}})
	require.NoError(t, err)
	require.Len(t, got.Points, 1)
	assert.Equal(t, PointID("doc_0000"), got.Points[0].ID)
	assert.Equal(t, "hello", got.Points[0].Payload["text"])
}

func TestUpsertBatch_Empty(t *testing.T) {
	q := NewQdrant(config.QdrantConfig{URL: "http://unused", Collection: "documents"})
	assert.NoError(t, q.UpsertBatch(context.Background(), nil))
}

func TestQuery(t *testing.T) {
	var got map[string]any
	q := newTestQdrant(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/documents/points/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"segment_id":"doc_0000","text":"hello","source_file":"doc.txt","chunk_index":0}},
			{"score":0.72,"payload":{"segment_id":"doc_0001","text":"world","source_file":"doc.txt","chunk_index":1}}
		]}`))
	})

	candidates, err := q.Query(context.Background(), []float32{0.1}, 10, 0.5, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 10, got["limit"])
	assert.EqualValues(t, 0.5, got["score_threshold"])
	assert.Equal(t, true, got["with_payload"])
	assert.NotContains(t, got, "filter")

	require.Len(t, candidates, 2)
	assert.Equal(t, "doc_0000", candidates[0].SegmentID)
	assert.Equal(t, "hello", candidates[0].Text)
	assert.Equal(t, "doc.txt", candidates[0].SourceFile)
	assert.Equal(t, 0.91, candidates[0].Score)
}

func TestQuery_WithFilters(t *testing.T) {
	var got map[string]any
	q := newTestQdrant(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	_, err := q.Query(context.Background(), []float32{0.1}, 10, 0.5, map[string]any{
		"file_type": "txt",
	})
	require.NoError(t, err)

	filter := got["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 1)
	cond := must[0].(map[string]any)
	assert.Equal(t, "file_type", cond["key"])
	assert.Equal(t, map[string]any{"value": "txt"}, cond["match"])
}

func TestQuery_IndexDown(t *testing.T) {
	q := newTestQdrant(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := q.Query(context.Background(), []float32{0.1}, 10, 0.5, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIndexUnavailable)
}

func TestDeleteBySourceFile(t *testing.T) {
	var got map[string]any
	q := newTestQdrant(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/documents/points/delete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":{"status":"acknowledged"}}`))
	})

	require.NoError(t, q.DeleteBySourceFile(context.Background(), "doc.txt"))

	filter := got["filter"].(map[string]any)
	must := filter["must"].([]any)
	cond := must[0].(map[string]any)
	assert.Equal(t, "source_file", cond["key"])
	assert.Equal(t, map[string]any{"value": "doc.txt"}, cond["match"])
}

func TestStats(t *testing.T) {
	q := newTestQdrant(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{
			"points_count":1234,
			"indexed_vectors_count":1200,
			"status":"green",
			"config":{"params":{"vectors":{"size":384,"distance":"Cosine"}}}
		}}`))
	})

	stats, err := q.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "documents", stats.Collection)
	assert.EqualValues(t, 1234, stats.PointsCount)
	assert.EqualValues(t, 1200, stats.IndexedCount)
	assert.Equal(t, "green", stats.Status)
	assert.Equal(t, 384, stats.VectorSize)
	assert.Equal(t, "Cosine", stats.DistanceModel)
}

func TestTranslateFilters(t *testing.T) {
	assert.Nil(t, translateFilters(nil))
	assert.Nil(t, translateFilters(map[string]any{}))

	f := translateFilters(map[string]any{
		"word_count": map[string]any{
			"range": map[string]any{"gte": 10.0, "lte": 500.0},
		},
	})
	must := f["must"].([]map[string]any)
	require.Len(t, must, 1)
	assert.Equal(t, "word_count", must[0]["key"])
	assert.Equal(t, map[string]any{"gte": 10.0, "lte": 500.0}, must[0]["range"])
}
