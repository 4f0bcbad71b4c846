package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Segment is a contiguous, bounded unit of document text prepared for
// embedding. Segments are immutable after creation; a correction produces a
// new segment rather than mutating an existing one.
type Segment struct {
	// ID is a stable identifier derived from source identity and position,
	// e.g. "report_0003".
	ID string

	// Text is the cleaned segment text, including any overlap prefix
	// carried over from the previous segment.
	Text string

	// SourceFile is the path of the document the segment came from.
	SourceFile string

	// Index is the zero-based position of the segment within its document.
	Index int

	WordCount int
	CharCount int

	// Metadata carries source-document metadata merged in at creation
	// (file name, size, extraction details). String keys, scalar values.
	Metadata map[string]any
}

// NewSegment builds a segment from cleaned text, computing word and
// character counts and copying the metadata map so the caller's map cannot
// mutate the segment afterwards.
func NewSegment(id, text, sourceFile string, index int, metadata map[string]any) Segment {
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return Segment{
		ID:         id,
		Text:       text,
		SourceFile: sourceFile,
		Index:      index,
		WordCount:  len(strings.Fields(text)),
		CharCount:  len(text),
		Metadata:   md,
	}
}

// Validate checks the invariants every pipeline stage may rely on.
func (s *Segment) Validate() error {
	if s.ID == "" {
		return errors.New("segment ID cannot be empty")
	}
	if strings.TrimSpace(s.Text) == "" {
		return errors.New("segment text cannot be empty")
	}
	if s.Index < 0 {
		return errors.New("segment index must be >= 0")
	}
	return nil
}

// Fingerprint returns the content fingerprint used as the embedding cache
// key: SHA-256 hex of the trimmed UTF-8 text. Trimming is the only
// normalization applied; case differences produce distinct fingerprints.
func Fingerprint(text string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(h[:])
}
