package chunker

import (
	"strings"
	"testing"
)

// rebuild reassembles the original text from overlapping chunks by
// removing the longest shared boundary region (bounded by overlap)
// between each consecutive pair.
func rebuild(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := chunks[0]
	for _, chunk := range chunks[1:] {
		max := overlap
		if max > len(chunk) {
			max = len(chunk)
		}
		if max > len(out) {
			max = len(out)
		}
		shared := 0
		for k := max; k > 0; k-- {
			if strings.HasSuffix(out, chunk[:k]) {
				shared = k
				break
			}
		}
		out += chunk[shared:]
	}
	return out
}

func TestFlat_Degenerate(t *testing.T) {
	f := NewFlat(100, 20, " ")

	t.Run("empty text", func(t *testing.T) {
		if chunks := f.Chunk(""); len(chunks) != 0 {
			t.Errorf("expected no chunks for empty text, got %d", len(chunks))
		}
	})

	t.Run("text within chunk size", func(t *testing.T) {
		chunks := f.Chunk("short text")
		if len(chunks) != 1 || chunks[0] != "short text" {
			t.Errorf("expected single whole chunk, got %v", chunks)
		}
	})

	t.Run("text exactly chunk size", func(t *testing.T) {
		text := strings.Repeat("ab", 50)
		chunks := f.Chunk(text)
		if len(chunks) != 1 || chunks[0] != text {
			t.Errorf("expected single whole chunk for exact-size text, got %d chunks", len(chunks))
		}
	})

	t.Run("no separator occurrence", func(t *testing.T) {
		text := strings.Repeat("x", 300)
		chunks := f.Chunk(text)
		if len(chunks) != 1 || chunks[0] != text {
			t.Errorf("expected one oversized chunk when text has no separator, got %d chunks", len(chunks))
		}
	})
}

func TestFlat_PacksWithinChunkSize(t *testing.T) {
	f := NewFlat(100, 20, " ")
	text := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 30))

	chunks := f.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds chunk size: %d chars", i, len(chunk))
		}
		if !strings.Contains(text, chunk) {
			t.Errorf("chunk %d is not a substring of the input", i)
		}
	}
}

func TestFlat_Coverage(t *testing.T) {
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta", "iota", "kappa"}
	var b strings.Builder
	for i := 0; i < 120; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(words[i%len(words)])
	}
	text := b.String()

	t.Run("with overlap", func(t *testing.T) {
		f := NewFlat(80, 25, " ")
		chunks := f.Chunk(text)
		if got := rebuild(chunks, 25); got != text {
			t.Errorf("rebuilt text differs from input:\n got: %q\nwant: %q", got, text)
		}
	})

	t.Run("without overlap chunks concatenate exactly", func(t *testing.T) {
		f := NewFlat(80, 0, " ")
		chunks := f.Chunk(text)
		if got := strings.Join(chunks, ""); got != text {
			t.Errorf("concatenated chunks differ from input:\n got: %q\nwant: %q", got, text)
		}
	})
}

func TestFlat_OverlapBound(t *testing.T) {
	overlap := 30
	f := NewFlat(120, overlap, " ")
	text := strings.TrimSpace(strings.Repeat("the quick brown fox jumps over the lazy dog ", 25))

	chunks := f.Chunk(text)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		shared := 0
		max := overlap
		if max > len(cur) {
			max = len(cur)
		}
		for k := max; k > 0; k-- {
			if strings.HasSuffix(prev, cur[:k]) {
				shared = k
				break
			}
		}
		if shared == 0 {
			t.Errorf("chunks %d and %d share no boundary region", i-1, i)
		}
		if shared > overlap {
			t.Errorf("chunks %d and %d share %d chars, more than overlap %d", i-1, i, shared, overlap)
		}
	}
}

func TestFlat_OverlapStartsAfterSeparator(t *testing.T) {
	f := NewFlat(100, 30, " ")
	text := strings.TrimSpace(strings.Repeat("some reasonably small words here ", 20))

	chunks := f.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Every word is far shorter than the lookahead window, so each
	// overlap seed snaps to a word start rather than cutting mid-word.
	for i := 1; i < len(chunks); i++ {
		first := strings.SplitN(chunks[i], " ", 2)[0]
		switch first {
		case "some", "reasonably", "small", "words", "here":
		default:
			t.Errorf("chunk %d starts mid-word: %q", i, first)
		}
	}
}

func TestFlat_OversizedSegmentEmittedAlone(t *testing.T) {
	f := NewFlat(50, 10, " ")
	long := strings.Repeat("y", 120)
	text := "start " + long + " end of the text here padding words"

	chunks := f.Chunk(text)

	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, long) {
			found = true
		}
	}
	if !found {
		t.Error("expected the separator-free run to survive inside a chunk")
	}
}

func TestNewFlat_ClampsParameters(t *testing.T) {
	f := NewFlat(0, -1, "")
	if f.chunkSize != DefaultChunkSize {
		t.Errorf("expected default chunk size, got %d", f.chunkSize)
	}
	if f.overlap < 0 || f.overlap >= f.chunkSize {
		t.Errorf("expected overlap in [0, chunkSize), got %d", f.overlap)
	}
	if f.separator != DefaultSeparator {
		t.Errorf("expected default separator, got %q", f.separator)
	}

	f = NewFlat(100, 100, " ")
	if f.overlap >= f.chunkSize {
		t.Error("overlap should be reduced when it reaches chunk size")
	}
}
