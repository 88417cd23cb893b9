package services

import "strings"

const (
	// defaultSnippetLength bounds source snippets when the caller
	// sets none.
	defaultSnippetLength = 200

	// snippetBoundarySnap is how far the snippet start may move
	// forward to begin at a word boundary.
	snippetBoundarySnap = 20
)

// extractSnippet returns the most query-relevant passage of text,
// at most maxLength characters long. It slides a window of twice the
// snippet length across the text, scores each window by query-term
// occurrences with early occurrences weighted higher, and tidies the
// best window to word boundaries with ellipsis markers where the
// snippet does not reach the text edges.
func extractSnippet(text, query string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = defaultSnippetLength
	}
	if len(text) <= maxLength {
		return text
	}

	terms := queryTerms(query)
	start := 0
	if len(terms) > 0 {
		start = bestWindowStart(text, terms, maxLength)
		start = snapToWordBoundary(text, start)
	}

	raw := text[start:]
	reachesEnd := true
	if len(raw) > maxLength {
		raw = raw[:maxLength]
		reachesEnd = false
		// Trim a trailing word fragment, but only when enough of the
		// snippet survives.
		if i := strings.LastIndexByte(raw, ' '); i > len(raw)*3/4 {
			raw = raw[:i]
		}
	}

	if start > 0 {
		raw = "..." + raw
	}
	if !reachesEnd {
		raw += "..."
	}
	return raw
}

// bestWindowStart scans the text in fixed steps and returns the start
// of the window with the densest query-term coverage. Occurrences in a
// window's first half count three times, rewarding snippets that lead
// with the matched terms. Ties keep the earliest window.
func bestWindowStart(text string, terms []string, maxLength int) int {
	window := 2 * maxLength
	step := maxLength / 4
	if step < 20 {
		step = 20
	}

	lower := strings.ToLower(text)
	bestStart := 0
	bestScore := -1

	for start := 0; start < len(lower); start += step {
		end := start + window
		if end > len(lower) {
			end = len(lower)
		}
		w := lower[start:end]
		half := len(w) / 2

		score := 0
		for _, term := range terms {
			score += 3*strings.Count(w[:half], term) + strings.Count(w[half:], term)
		}
		if score > bestScore {
			bestScore = score
			bestStart = start
		}
	}
	return bestStart
}

// snapToWordBoundary moves the start forward to just after the next
// space when the window opens mid-word. A snippet that opens mid-word
// reads worse than one that loses a few characters.
func snapToWordBoundary(text string, start int) int {
	if start == 0 {
		return 0
	}
	switch text[start-1] {
	case ' ', '\t', '\n':
		return start
	}
	end := start + snippetBoundarySnap
	if end > len(text) {
		end = len(text)
	}
	if i := strings.IndexAny(text[start:end], " \t\n"); i >= 0 && start+i+1 < len(text) {
		return start + i + 1
	}
	return start
}

// queryTerms extracts the significant search terms from a query:
// lowercased whitespace tokens longer than two characters, with edge
// punctuation removed.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]")
		if len(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}
