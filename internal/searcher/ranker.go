package searcher

import (
	"sort"
	"strings"

	"github.com/semdex/semdex/pkg/types"
)

// Ranking parameters
const (
	// KeywordBoostCap bounds the score increase from exact word overlap.
	KeywordBoostCap = 0.1

	// ShortSegmentWords and LongSegmentWords bound the unpenalized
	// segment length, in words.
	ShortSegmentWords = 10
	LongSegmentWords  = 500

	ShortSegmentPenalty = 0.9
	LongSegmentPenalty  = 0.95

	// DiversityDivisor sets the per-file quota to max(1, N/divisor).
	DiversityDivisor = 3

	DiversityPenalty = 0.8
)

// Ranker refines raw similarity scores. It is stateless and deterministic:
// the same candidates and query always produce the same ordering.
type Ranker struct{}

// NewRanker returns a Ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank applies keyword boost, length penalties, and the per-file diversity
// quota, returning results ordered by final score descending. Every
// adjustment is recorded in the result's Explanation map; final scores are
// clamped to [0, 1].
func (r *Ranker) Rank(candidates []types.Candidate, query string) []types.RankedResult {
	if len(candidates) == 0 {
		return nil
	}

	queryWords := wordSet(query)

	results := make([]types.RankedResult, len(candidates))
	for i, c := range candidates {
		res := types.RankedResult{
			SegmentID:  c.SegmentID,
			Text:       c.Text,
			SourceFile: c.SourceFile,
			Metadata:   copyMetadata(c.Metadata),
			Score:      c.Score,
			Explanation: map[string]any{
				"original_score": c.Score,
			},
		}

		if len(queryWords) > 0 {
			common := intersectWords(queryWords, c.Text)
			if len(common) > 0 {
				boost := float64(len(common)) / float64(len(queryWords)) * KeywordBoostCap
				if boost > KeywordBoostCap {
					boost = KeywordBoostCap
				}
				res.Score = min1(res.Score + boost)
				res.Explanation["keyword_matches"] = common
				res.Explanation["keyword_boost"] = boost
			}
		}

		words := len(strings.Fields(c.Text))
		res.Explanation["text_length_words"] = words
		switch {
		case words < ShortSegmentWords:
			res.Score *= ShortSegmentPenalty
			res.Explanation["length_penalty"] = ShortSegmentPenalty
		case words > LongSegmentWords:
			res.Score *= LongSegmentPenalty
			res.Explanation["length_penalty"] = LongSegmentPenalty
		}

		results[i] = res
	}

	r.applyDiversity(results)

	for i := range results {
		results[i].Score = clamp01(results[i].Score)
	}
	sortByScore(results)
	return results
}

// applyDiversity limits each source file to max(1, N/3) unpenalized
// results. Results over the quota stay in the list with a reduced score.
func (r *Ranker) applyDiversity(results []types.RankedResult) {
	sortByScore(results)

	maxPerFile := len(results) / DiversityDivisor
	if maxPerFile < 1 {
		maxPerFile = 1
	}

	fileCounts := make(map[string]int)
	for i := range results {
		file := results[i].SourceFile
		if fileCounts[file] < maxPerFile {
			fileCounts[file]++
			continue
		}
		results[i].Score *= DiversityPenalty
		results[i].Explanation["diversity_penalty"] = true
	}
}

// wordSet lowercases and splits text into a set of words.
func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// intersectWords returns the sorted query words that appear in text.
func intersectWords(queryWords map[string]struct{}, text string) []string {
	seen := wordSet(text)
	var common []string
	for w := range queryWords {
		if _, ok := seen[w]; ok {
			common = append(common, w)
		}
	}
	sort.Strings(common)
	return common
}

func sortByScore(results []types.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	return min1(v)
}
