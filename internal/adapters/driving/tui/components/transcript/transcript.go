// Package transcript provides the conversation log component for the TUI.
package transcript

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ansa/internal/core/domain"
)

// Entry is one conversation turn. An entry starts pending and is
// completed when the answer arrives.
type Entry struct {
	Question string
	Answer   domain.Answer
	Done     bool
}

// Transcript displays the rolling conversation with scrollback.
type Transcript struct {
	entries       []Entry
	lines         []string
	scrollOffset  int
	follow        bool
	thinkingFrame string
	styles        *styles.Styles
	width         int
	height        int
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Transcript{
		entries: nil,
		styles:  s,
		follow:  true,
		width:   80,
		height:  10,
	}
}

// Append adds a pending turn for the given question.
func (t *Transcript) Append(question string) {
	t.entries = append(t.entries, Entry{Question: question})
	t.follow = true
	t.rebuild()
}

// Complete fills in the answer for the most recent pending turn.
func (t *Transcript) Complete(answer domain.Answer) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if !t.entries[i].Done {
			t.entries[i].Answer = answer
			t.entries[i].Done = true
			break
		}
	}
	t.rebuild()
}

// SetThinkingFrame sets the spinner frame shown on pending turns.
func (t *Transcript) SetThinkingFrame(frame string) {
	t.thinkingFrame = frame
	t.rebuild()
}

// Entries returns the conversation turns.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Len returns the number of turns, pending included.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Turns returns the number of completed turns.
func (t *Transcript) Turns() int {
	count := 0
	for _, e := range t.entries {
		if e.Done {
			count++
		}
	}
	return count
}

// IsEmpty returns whether the transcript has no turns.
func (t *Transcript) IsEmpty() bool {
	return len(t.entries) == 0
}

// View renders the visible window of the transcript.
func (t *Transcript) View() string {
	if len(t.entries) == 0 {
		return t.styles.Muted.Render("No questions yet. Type below and press enter.")
	}

	end := t.scrollOffset + t.height
	if end > len(t.lines) {
		end = len(t.lines)
	}
	start := t.scrollOffset
	if start > end {
		start = end
	}

	return strings.Join(t.lines[start:end], "\n")
}

// ScrollUp scrolls one line up and stops following new content.
func (t *Transcript) ScrollUp() {
	if t.scrollOffset > 0 {
		t.scrollOffset--
	}
	t.follow = false
}

// ScrollDown scrolls one line down, resuming follow at the bottom.
func (t *Transcript) ScrollDown() {
	if t.scrollOffset < t.maxScrollOffset() {
		t.scrollOffset++
	}
	if t.scrollOffset == t.maxScrollOffset() {
		t.follow = true
	}
}

// PageUp scrolls one page up and stops following new content.
func (t *Transcript) PageUp() {
	t.scrollOffset -= t.height
	if t.scrollOffset < 0 {
		t.scrollOffset = 0
	}
	t.follow = false
}

// PageDown scrolls one page down, resuming follow at the bottom.
func (t *Transcript) PageDown() {
	t.scrollOffset += t.height
	if t.scrollOffset > t.maxScrollOffset() {
		t.scrollOffset = t.maxScrollOffset()
	}
	if t.scrollOffset == t.maxScrollOffset() {
		t.follow = true
	}
}

// ScrollToTop jumps to the first line.
func (t *Transcript) ScrollToTop() {
	t.scrollOffset = 0
	t.follow = false
}

// ScrollToBottom jumps to the last line and resumes following.
func (t *Transcript) ScrollToBottom() {
	t.scrollOffset = t.maxScrollOffset()
	t.follow = true
}

// ScrollOffset returns the current scroll position.
func (t *Transcript) ScrollOffset() int {
	return t.scrollOffset
}

// SetDimensions sets the component dimensions.
func (t *Transcript) SetDimensions(width, height int) {
	t.width = width
	t.height = height
	t.rebuild()
}

// Width returns the current width.
func (t *Transcript) Width() int {
	return t.width
}

// Height returns the current height.
func (t *Transcript) Height() int {
	return t.height
}

// rebuild re-renders the line cache after content or size changes.
func (t *Transcript) rebuild() {
	contentWidth := t.width - 2
	if contentWidth < 20 {
		contentWidth = 20
	}

	lines := make([]string, 0, len(t.entries)*6)
	for i := range t.entries {
		lines = append(lines, t.renderEntry(&t.entries[i], contentWidth)...)
		lines = append(lines, "")
	}
	t.lines = lines

	if t.follow {
		t.scrollOffset = t.maxScrollOffset()
	} else if t.scrollOffset > t.maxScrollOffset() {
		t.scrollOffset = t.maxScrollOffset()
	}
}

// renderEntry renders one turn to styled, wrapped lines.
func (t *Transcript) renderEntry(e *Entry, width int) []string {
	lines := make([]string, 0, 8)

	for _, line := range wrap("You: "+e.Question, width) {
		lines = append(lines, t.styles.Question.Render(line))
	}

	if !e.Done {
		thinking := "Ansa: thinking..."
		if t.thinkingFrame != "" {
			thinking = "Ansa: " + t.thinkingFrame + " thinking..."
		}
		lines = append(lines, t.styles.Muted.Render(thinking))
		return lines
	}

	for _, line := range wrap("Ansa: "+e.Answer.Response, width) {
		lines = append(lines, t.styles.Answer.Render(line))
	}

	for i, src := range e.Answer.Sources {
		title := src.Title
		if title == "" {
			title = src.DocumentID
		}
		citation := fmt.Sprintf("  [%d] %s (%.2f)", i+1, title, src.Score)
		lines = append(lines, t.styles.Citation.Render(citation))
	}

	if e.Answer.Meta.Error != "" {
		lines = append(lines, t.styles.Error.Render("  error: "+e.Answer.Meta.Error))
	}

	return lines
}

// maxScrollOffset returns the maximum scroll offset.
func (t *Transcript) maxScrollOffset() int {
	maxOffset := len(t.lines) - t.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// wrap splits text into lines at word boundaries. Tokens longer than
// the width are split hard so no line overflows.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		line := ""
		for _, word := range words {
			for len(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				out = append(out, word[:width])
				word = word[width:]
			}
			switch {
			case word == "":
			case line == "":
				line = word
			case len(line)+1+len(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
