package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSegment(t *testing.T) {
	md := map[string]any{"file_type": "txt"}
	seg := NewSegment("doc_0001", "some cleaned text here", "/docs/doc.txt", 1, md)

	assert.Equal(t, "doc_0001", seg.ID)
	assert.Equal(t, 4, seg.WordCount)
	assert.Equal(t, len("some cleaned text here"), seg.CharCount)

	// Metadata is copied at construction.
	md["file_type"] = "html"
	assert.Equal(t, "txt", seg.Metadata["file_type"])
}

func TestSegmentValidate(t *testing.T) {
	tests := []struct {
		name    string
		seg     Segment
		wantErr bool
	}{
		{"valid", NewSegment("a_0000", "text", "a.txt", 0, nil), false},
		{"empty id", Segment{Text: "text"}, true},
		{"blank text", Segment{ID: "a_0000", Text: "   "}, true},
		{"negative index", Segment{ID: "a_0000", Text: "text", Index: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	// Trimming is the only normalization.
	assert.Equal(t, Fingerprint("hello"), Fingerprint("  hello  \n"))
	assert.NotEqual(t, Fingerprint("hello"), Fingerprint("Hello"))
	assert.NotEqual(t, Fingerprint("hello"), Fingerprint("hello world"))
	assert.Len(t, Fingerprint("hello"), 64)
}

func TestRankedResultValidate(t *testing.T) {
	r := RankedResult{SegmentID: "a_0000", Score: 0.5}
	assert.NoError(t, r.Validate())

	r.Score = 1.2
	assert.ErrorIs(t, r.Validate(), ErrInvalidScore)

	r.Score = -0.1
	assert.ErrorIs(t, r.Validate(), ErrInvalidScore)

	r = RankedResult{Score: 0.5}
	assert.ErrorIs(t, r.Validate(), ErrInvalidSegmentID)
}

func TestRankedResultClone(t *testing.T) {
	orig := RankedResult{
		SegmentID:   "a_0000",
		Text:        "text",
		Score:       0.8,
		Metadata:    map[string]any{"k": "v"},
		Explanation: map[string]any{"original_score": 0.7},
	}

	clone := orig.Clone()
	require.Equal(t, orig.SegmentID, clone.SegmentID)
	require.Equal(t, orig.Score, clone.Score)

	clone.Metadata["k"] = "mutated"
	clone.Explanation["original_score"] = 0.0
	assert.Equal(t, "v", orig.Metadata["k"])
	assert.Equal(t, 0.7, orig.Explanation["original_score"])
}
