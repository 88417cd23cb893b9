// Package chunker splits document text into bounded, overlapping chunks.
//
// Two strategies are provided. Flat packs splits along a single separator
// into fixed-size chunks with a configurable overlap. Semantic walks a
// separator hierarchy from coarse to fine and packs along the first level
// that divides the text well, closing chunks at sentence boundaries.
//
// Both strategies emit chunks that are contiguous substrings of the
// input, in order, so that every character of the input appears in at
// least one chunk.
package chunker

import "strings"

// Default chunking parameters.
const (
	// DefaultChunkSize is the default number of characters per chunk.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default number of overlapping characters.
	DefaultChunkOverlap = 200

	// DefaultSeparator is the default flat-mode split boundary.
	DefaultSeparator = " "
)

// overlapBoundaryLookahead bounds the search for a separator to snap the
// overlap start to. Beyond this many characters the raw cut is used.
const overlapBoundaryLookahead = 20

// Flat packs separator splits greedily into chunks of at most chunkSize
// characters, seeding each chunk after the first with the trailing
// overlap characters of its predecessor.
type Flat struct {
	chunkSize int
	overlap   int
	separator string
}

// NewFlat creates a flat chunker. Out-of-range parameters fall back to
// defaults: chunkSize must be positive and overlap must be in
// [0, chunkSize).
func NewFlat(chunkSize, overlap int, separator string) *Flat {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if separator == "" {
		separator = DefaultSeparator
	}
	return &Flat{
		chunkSize: chunkSize,
		overlap:   overlap,
		separator: separator,
	}
}

// Chunk splits text into chunks of at most chunkSize characters, except
// when a single separator-free run alone exceeds it. Consecutive chunks
// share up to overlap characters. Empty text produces no chunks and text
// within chunkSize is returned whole.
func (f *Flat) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= f.chunkSize {
		return []string{text}
	}

	segs := strings.Split(text, f.separator)
	var chunks []string

	// Each segment after the first contributes its leading separator,
	// so consecutive pieces concatenate back to the original text.
	acc := segs[0]
	for _, seg := range segs[1:] {
		piece := f.separator + seg
		if acc != "" && len(acc)+len(piece) > f.chunkSize {
			chunks = append(chunks, acc)
			acc = f.overlapSeed(acc) + piece
		} else {
			acc += piece
		}
	}
	if acc != "" {
		chunks = append(chunks, acc)
	}
	return chunks
}

// overlapSeed returns the suffix of the emitted chunk that seeds the
// next one. The seed starts at the trailing overlap characters, moved
// forward to just past a separator when one occurs within the lookahead
// window, so the next chunk does not open mid-token.
func (f *Flat) overlapSeed(chunk string) string {
	if f.overlap <= 0 {
		return ""
	}
	cut := len(chunk) - f.overlap
	if cut <= 0 {
		return chunk
	}

	end := cut + overlapBoundaryLookahead
	if end > len(chunk) {
		end = len(chunk)
	}
	if i := strings.Index(chunk[cut:end], f.separator); i >= 0 {
		start := cut + i + len(f.separator)
		if start < len(chunk) {
			return chunk[start:]
		}
	}
	return chunk[cut:]
}
