package vectorstore

import (
	"context"

	"github.com/semdex/semdex/pkg/types"
)

// Point is one indexed segment with its vector and payload.
type Point struct {
	SegmentID string
	Vector    []float32
	Payload   map[string]any
}

// Stats describes the state of the remote collection.
type Stats struct {
	Collection    string `json:"collection"`
	PointsCount   int64  `json:"points_count"`
	IndexedCount  int64  `json:"indexed_vectors_count"`
	Status        string `json:"status"`
	VectorSize    int    `json:"vector_size"`
	DistanceModel string `json:"distance"`
}

// Index is the vector index the pipelines depend on.
type Index interface {
	// EnsureCollection creates the collection if missing and verifies the
	// vector dimension of an existing one.
	EnsureCollection(ctx context.Context, dimension int) error

	// UpsertBatch writes points, overwriting any with the same segment ID.
	UpsertBatch(ctx context.Context, points []Point) error

	// Query returns up to limit candidates scoring at or above threshold,
	// ordered by descending similarity. A nil filters map means no
	// filtering.
	Query(ctx context.Context, vector []float32, limit int, threshold float64, filters map[string]any) ([]types.Candidate, error)

	// DeleteBySourceFile removes every point indexed from sourceFile.
	DeleteBySourceFile(ctx context.Context, sourceFile string) error

	// Health reports whether the index answers requests.
	Health(ctx context.Context) error

	// Stats returns collection statistics.
	Stats(ctx context.Context) (*Stats, error)
}
