package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/semdex/semdex/internal/chunker"
	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/internal/extractor"
	"github.com/semdex/semdex/internal/vectorstore"
	"github.com/semdex/semdex/pkg/types"
)

// Batch defaults
const (
	DefaultEmbedBatchSize  = 32
	DefaultUpsertBatchSize = 100
)

// ErrIndexingInProgress is returned when a run is already active.
var ErrIndexingInProgress = fmt.Errorf("indexing already in progress")

// Statistics summarizes one indexing run. Failed files and batches are
// counted and described; they never abort the run.
type Statistics struct {
	FilesIndexed    int           `json:"files_indexed"`
	FilesFailed     int           `json:"files_failed"`
	SegmentsCreated int           `json:"segments_created"`
	SegmentsIndexed int           `json:"segments_indexed"`
	SuccessRate     float64       `json:"success_rate"`
	ExtractTime     time.Duration `json:"extract_time"`
	ChunkTime       time.Duration `json:"chunk_time"`
	EmbedTime       time.Duration `json:"embed_time"`
	UpsertTime      time.Duration `json:"upsert_time"`
	Duration        time.Duration `json:"duration"`
	ErrorMessages   []string      `json:"error_messages,omitempty"`
}

// finalize computes the derived fields once a run completes. A run that
// produced no segments indexed everything it was asked to.
func (s *Statistics) finalize(start time.Time) {
	s.Duration = time.Since(start)
	if s.SegmentsCreated > 0 {
		s.SuccessRate = float64(s.SegmentsIndexed) / float64(s.SegmentsCreated)
	} else {
		s.SuccessRate = 1.0
	}
}

// Indexer coordinates the pipeline: discover -> extract -> chunk ->
// embed -> upsert.
type Indexer struct {
	extractors *extractor.Registry
	chunker    *chunker.Chunker
	embedder   *embedder.Service
	index      vectorstore.Index

	workers     int
	embedBatch  int
	upsertBatch int

	lock runLock
}

// New creates an Indexer from configuration and its collaborators.
func New(ch *chunker.Chunker, emb *embedder.Service, index vectorstore.Index, cfg config.IndexingConfig) *Indexer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	embedBatch := cfg.EmbedBatchSize
	if embedBatch <= 0 {
		embedBatch = DefaultEmbedBatchSize
	}
	upsertBatch := cfg.UpsertBatch
	if upsertBatch <= 0 {
		upsertBatch = DefaultUpsertBatchSize
	}
	return &Indexer{
		extractors:  extractor.NewRegistry(),
		chunker:     ch,
		embedder:    emb,
		index:       index,
		workers:     workers,
		embedBatch:  embedBatch,
		upsertBatch: upsertBatch,
	}
}

// fileSegments pairs a source file with its chunked segments.
type fileSegments struct {
	path     string
	segments []types.Segment
}

// IndexPath indexes every supported document under rootPath. Files that
// fail to extract and batches that fail to embed or upsert are recorded in
// the statistics and skipped.
func (idx *Indexer) IndexPath(ctx context.Context, rootPath string) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer idx.lock.Release()

	start := time.Now()
	stats := &Statistics{}

	files, err := idx.discoverFiles(rootPath)
	if err != nil {
		return nil, fmt.Errorf("discover documents: %w", err)
	}

	perFile := idx.extractAndChunk(ctx, files, stats)

	var segments []types.Segment
	for _, fs := range perFile {
		segments = append(segments, fs.segments...)
	}
	stats.SegmentsCreated = len(segments)

	if err := idx.embedAndUpsert(ctx, segments, stats); err != nil {
		return nil, err
	}

	stats.finalize(start)
	return stats, nil
}

// IndexFile indexes one document, first removing any points previously
// indexed from it so renames of content inside the file do not leave
// stale segments behind.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer idx.lock.Release()

	start := time.Now()
	stats := &Statistics{}

	if !idx.extractors.Supported(path) {
		return nil, fmt.Errorf("unsupported document type: %s", path)
	}
	if err := idx.index.DeleteBySourceFile(ctx, path); err != nil {
		return nil, err
	}

	perFile := idx.extractAndChunk(ctx, []string{path}, stats)

	var segments []types.Segment
	for _, fs := range perFile {
		segments = append(segments, fs.segments...)
	}
	stats.SegmentsCreated = len(segments)

	if err := idx.embedAndUpsert(ctx, segments, stats); err != nil {
		return nil, err
	}

	stats.finalize(start)
	return stats, nil
}

// DeleteDocument removes every indexed segment of sourceFile.
func (idx *Indexer) DeleteDocument(ctx context.Context, sourceFile string) error {
	return idx.index.DeleteBySourceFile(ctx, sourceFile)
}

// discoverFiles walks rootPath collecting supported document files,
// skipping hidden directories.
func (idx *Indexer) discoverFiles(rootPath string) ([]string, error) {
	var files []string
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != rootPath {
				return filepath.SkipDir
			}
			return nil
		}
		if idx.extractors.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// extractAndChunk runs extraction and chunking concurrently across files
// with a bounded worker pool. Failed files are recorded and skipped.
func (idx *Indexer) extractAndChunk(ctx context.Context, files []string, stats *Statistics) []fileSegments {
	var (
		mu        sync.Mutex
		perFile   []fileSegments
		extractNs atomic.Int64
		chunkNs   atomic.Int64
		indexed   atomic.Int32
		failed    atomic.Int32
	)

	g, gctx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, idx.workers)

	for _, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			extractStart := time.Now()
			text, err := idx.extractors.Extract(path)
			extractNs.Add(int64(time.Since(extractStart)))
			if err != nil {
				failed.Add(1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				return nil
			}

			chunkStart := time.Now()
			segments := idx.chunker.Chunk(text, chunker.SourceInfo{
				Path: path,
				Metadata: map[string]any{
					"file_type": strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
				},
			})
			chunkNs.Add(int64(time.Since(chunkStart)))

			indexed.Add(1)
			mu.Lock()
			perFile = append(perFile, fileSegments{path: path, segments: segments})
			mu.Unlock()
			return nil
		})
	}
	// Per-file errors are swallowed above; only context cancellation can
	// surface here.
	_ = g.Wait()

	stats.FilesIndexed = int(indexed.Load())
	stats.FilesFailed = int(failed.Load())
	stats.ExtractTime = time.Duration(extractNs.Load())
	stats.ChunkTime = time.Duration(chunkNs.Load())
	return perFile
}

// embedAndUpsert embeds segments in fixed-size batches and upserts the
// resulting points. A failed batch is recorded and skipped.
func (idx *Indexer) embedAndUpsert(ctx context.Context, segments []types.Segment, stats *Statistics) error {
	var points []vectorstore.Point

	embedStart := time.Now()
	for i := 0; i < len(segments); i += idx.embedBatch {
		end := i + idx.embedBatch
		if end > len(segments) {
			end = len(segments)
		}
		batch := segments[i:end]

		texts := make([]string, len(batch))
		for j, seg := range batch {
			texts[j] = seg.Text
		}

		vectors, err := idx.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			stats.ErrorMessages = append(stats.ErrorMessages,
				fmt.Sprintf("embed batch %d-%d: %v", i, end, err))
			continue
		}

		for j, seg := range batch {
			points = append(points, vectorstore.Point{
				SegmentID: seg.ID,
				Vector:    vectors[j],
				Payload:   pointPayload(seg),
			})
		}
	}
	stats.EmbedTime = time.Since(embedStart)

	upsertStart := time.Now()
	for i := 0; i < len(points); i += idx.upsertBatch {
		end := i + idx.upsertBatch
		if end > len(points) {
			end = len(points)
		}
		batch := points[i:end]

		if err := idx.index.UpsertBatch(ctx, batch); err != nil {
			stats.ErrorMessages = append(stats.ErrorMessages,
				fmt.Sprintf("upsert batch %d-%d: %v", i, end, err))
			continue
		}
		stats.SegmentsIndexed += len(batch)
	}
	stats.UpsertTime = time.Since(upsertStart)

	return nil
}

// pointPayload builds the index payload for a segment. The segment's own
// metadata is merged under the reserved keys.
func pointPayload(seg types.Segment) map[string]any {
	payload := make(map[string]any, len(seg.Metadata)+5)
	for k, v := range seg.Metadata {
		payload[k] = v
	}
	payload["segment_id"] = seg.ID
	payload["text"] = seg.Text
	payload["source_file"] = seg.SourceFile
	payload["chunk_index"] = seg.Index
	payload["word_count"] = seg.WordCount
	return payload
}
