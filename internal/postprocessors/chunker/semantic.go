package chunker

import "strings"

// Default semantic chunking bounds.
const (
	// DefaultMinChunkSize is the smallest chunk the packer aims for.
	DefaultMinChunkSize = 100

	// DefaultMaxChunkSize is the largest chunk the packer allows.
	DefaultMaxChunkSize = 2000
)

// DefaultSeparators orders split boundaries from coarse to fine:
// section breaks, paragraphs, lines, sentences, clauses, words.
func DefaultSeparators() []string {
	return []string{"\n\n\n", "\n\n", "\n", ". ", ", ", " "}
}

// Semantic chunks text along the first separator in a coarse-to-fine
// hierarchy that divides the text into well-sized segments. When no
// separator fits, it falls back to flat word-level chunking.
type Semantic struct {
	minSize    int
	maxSize    int
	separators []string
}

// NewSemantic creates a semantic chunker. Out-of-range bounds fall back
// to defaults: minSize must be positive and maxSize at least minSize.
func NewSemantic(minSize, maxSize int, separators []string) *Semantic {
	if minSize <= 0 {
		minSize = DefaultMinChunkSize
	}
	if maxSize < minSize {
		maxSize = DefaultMaxChunkSize
		if maxSize < minSize {
			maxSize = minSize * 2
		}
	}
	if len(separators) == 0 {
		separators = DefaultSeparators()
	}
	return &Semantic{
		minSize:    minSize,
		maxSize:    maxSize,
		separators: separators,
	}
}

// Chunk splits text along the first accepted separator. Empty text
// produces no chunks and text within maxSize is returned whole. Chunks
// stay within maxSize except when a single segment of the accepted
// separator alone exceeds it.
func (s *Semantic) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.maxSize {
		return []string{text}
	}

	for _, sep := range s.separators {
		segs := strings.Split(text, sep)
		if s.accepts(segs) {
			return s.pack(segs, sep)
		}
	}

	// No separator divides the text acceptably (e.g. unbroken prose
	// with no punctuation). Word-level flat chunking bounded by maxSize
	// still succeeds on any text that contains spaces.
	return NewFlat(s.maxSize, 0, " ").Chunk(text)
}

// accepts decides whether a separator's segments are worth packing.
// A separator is rejected when it barely splits the text, when any
// segment is more than half again the maximum size, or when over 70%
// of segments fall outside the useful size band.
func (s *Semantic) accepts(segs []string) bool {
	if len(segs) <= 1 {
		return false
	}
	poorFit := 0
	for _, seg := range segs {
		n := len(seg)
		if n > s.maxSize*3/2 {
			return false
		}
		if n < s.minSize/2 || float64(n) > 0.8*float64(s.maxSize) {
			poorFit++
		}
	}
	return float64(poorFit) <= 0.7*float64(len(segs))
}

// pack joins consecutive segments into chunks of at most maxSize,
// closing a chunk early once it reaches minSize and ends at a sentence
// boundary. The separator between two chunks stays with the earlier
// chunk, so the emitted chunks concatenate back to the original text.
func (s *Semantic) pack(segs []string, sep string) []string {
	var chunks []string
	acc := ""
	started := false

	for i, seg := range segs {
		switch {
		case !started:
			acc = seg
			started = true
		case acc != "" && len(acc)+len(sep)+len(seg) > s.maxSize:
			chunks = append(chunks, acc+sep)
			acc = seg
		default:
			acc += sep + seg
		}

		if i < len(segs)-1 && len(acc) >= s.minSize && endsAtSentence(acc) {
			chunks = append(chunks, acc+sep)
			acc = ""
			started = false
		}
	}
	if started && acc != "" {
		chunks = append(chunks, acc)
	}
	return chunks
}

// endsAtSentence reports whether the text ends at a sentence-terminal
// character, ignoring trailing whitespace.
func endsAtSentence(text string) bool {
	text = strings.TrimRight(text, " \t\n")
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?', ':', ';':
		return true
	default:
		return false
	}
}
