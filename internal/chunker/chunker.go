package chunker

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/semdex/semdex/pkg/types"
)

const (
	// MinChunkSize is the smallest permitted chunk size. Anything smaller
	// fragments sentences badly enough to hurt retrieval quality.
	MinChunkSize = 100

	// OverlapWordDivisor converts the character overlap budget into an
	// approximate trailing word count. The ratio is a tunable
	// approximation, not an exact character budget.
	OverlapWordDivisor = 10
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// disallowedRe strips everything outside a safe allowlist of letters,
	// digits, whitespace, and sentence punctuation (Unicode-aware).
	disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:\-()\[\]"']+`)
	multiDotRe   = regexp.MustCompile(`\.{2,}`)
	multiTermRe  = regexp.MustCompile(`[!?]{2,}`)
	// sentenceRe matches sentence-like units: a run of non-terminal text
	// followed by terminal punctuation, or a trailing run with none.
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+\s*|[^.!?]+$`)
)

// SourceInfo identifies the document a text came from and carries its
// extraction metadata, which is merged into every produced segment.
type SourceInfo struct {
	Path     string
	Metadata map[string]any
}

// Chunker splits cleaned document text into overlapping, context-preserving
// segments. It is a pure function over its inputs: no I/O, deterministic
// output for identical arguments.
type Chunker struct {
	maxSize int
	overlap int
}

// New validates the chunking parameters once. maxSize must be at least
// MinChunkSize and overlap must be smaller than maxSize.
func New(maxSize, overlap int) (*Chunker, error) {
	if maxSize < MinChunkSize {
		return nil, fmt.Errorf("%w: max chunk size must be >= %d, got %d", types.ErrConfiguration, MinChunkSize, maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, max size), got %d", types.ErrConfiguration, overlap)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}, nil
}

// Clean normalizes raw extracted text so sentence-boundary detection is
// reliable: collapse whitespace runs to single spaces, strip characters
// outside the allowlist, collapse repeated terminal punctuation, trim.
func (c *Chunker) Clean(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = disallowedRe.ReplaceAllString(text, " ")
	text = multiDotRe.ReplaceAllString(text, ".")
	text = multiTermRe.ReplaceAllString(text, "!")
	return strings.TrimSpace(text)
}

// Chunk cleans text and splits it into segments of at most maxSize
// characters, preferring sentence boundaries and falling back to word
// boundaries for oversized sentences. Each segment after the first is
// prefixed with the trailing words of its predecessor (the overlap budget
// divided by OverlapWordDivisor), so segment text may exceed maxSize by the
// overlap prefix. Empty or whitespace-only text yields no segments.
func (c *Chunker) Chunk(text string, src SourceInfo) []types.Segment {
	cleaned := c.Clean(text)
	if cleaned == "" {
		return nil
	}

	var parts []string
	if len(cleaned) < c.maxSize {
		parts = []string{cleaned}
	} else {
		parts = c.applyOverlap(c.split(cleaned))
	}

	stem := sourceStem(src.Path)
	segments := make([]types.Segment, 0, len(parts))
	for i, part := range parts {
		id := fmt.Sprintf("%s_%04d", stem, i)
		segments = append(segments, types.NewSegment(id, part, src.Path, i, src.Metadata))
	}
	return segments
}

// split greedily accumulates sentences into chunks of at most maxSize
// characters. A single sentence longer than maxSize is split again on word
// boundaries with the same greedy rule, so only an unsplittable word can
// ever exceed the bound.
func (c *Chunker) split(text string) []string {
	sentences := splitSentences(text)

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		if len(candidate) <= c.maxSize {
			current = candidate
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
		}
		if len(sentence) <= c.maxSize {
			current = sentence
			continue
		}

		// Oversized sentence: greedy word accumulation.
		wordChunk := ""
		for _, word := range strings.Fields(sentence) {
			wc := word
			if wordChunk != "" {
				wc = wordChunk + " " + word
			}
			if len(wc) <= c.maxSize {
				wordChunk = wc
				continue
			}
			if wordChunk != "" {
				chunks = append(chunks, wordChunk)
			}
			wordChunk = word
		}
		current = wordChunk
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// applyOverlap prefixes every chunk after the first with the trailing words
// of its pre-overlap predecessor. The word count approximates the
// configured character budget; an overlap below OverlapWordDivisor rounds
// to zero words and is skipped.
func (c *Chunker) applyOverlap(chunks []string) []string {
	overlapWords := c.overlap / OverlapWordDivisor
	if overlapWords <= 0 || len(chunks) < 2 {
		return chunks
	}

	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		words := strings.Fields(chunks[i-1])
		if len(words) > overlapWords {
			words = words[len(words)-overlapWords:]
		}
		out[i] = strings.Join(words, " ") + " " + chunks[i]
	}
	return out
}

// splitSentences breaks cleaned text into sentence-like units, keeping the
// terminal punctuation attached.
func splitSentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m != "" {
			sentences = append(sentences, m)
		}
	}
	return sentences
}

// sourceStem derives the segment ID prefix from a source path.
func sourceStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
