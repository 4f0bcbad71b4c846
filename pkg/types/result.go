package types

// Candidate is a raw result from the vector index, before ranking
// adjustments. It exists only within a single search call until it is
// ranked or discarded.
type Candidate struct {
	SegmentID  string
	Text       string
	Score      float64 // cosine similarity in [0,1]
	SourceFile string
	Metadata   map[string]any
}

// RankedResult is a candidate after keyword, length, and diversity score
// adjustments. Explanation records how the final score was derived so
// callers can see why a result ranked where it did.
type RankedResult struct {
	SegmentID  string
	Text       string
	SourceFile string
	Metadata   map[string]any

	// Score is the final relevance score after all adjustments,
	// clamped to [0,1].
	Score float64

	// Explanation maps adjustment names to their values: original_score,
	// keyword_matches, keyword_boost, text_length_words, diversity_penalty.
	Explanation map[string]any
}

// Validate checks that the result is well-formed for returning to callers.
func (r *RankedResult) Validate() error {
	if r.SegmentID == "" {
		return ErrInvalidSegmentID
	}
	if r.Score < 0 || r.Score > 1 {
		return ErrInvalidScore
	}
	return nil
}

// Clone deep-copies the result so cached copies cannot be mutated by
// callers.
func (r *RankedResult) Clone() RankedResult {
	out := *r
	out.Metadata = make(map[string]any, len(r.Metadata))
	for k, v := range r.Metadata {
		out.Metadata[k] = v
	}
	out.Explanation = make(map[string]any, len(r.Explanation))
	for k, v := range r.Explanation {
		out.Explanation[k] = v
	}
	return out
}
