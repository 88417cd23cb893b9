// Package input wraps the bubbles text input for the chat prompt.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/styles"
)

const (
	defaultWidth  = 50  // starting width before the first resize
	labelReserve  = 10  // columns kept for the "Ask:" label and padding
	minFieldWidth = 20  // the field never shrinks below this
	questionLimit = 512 // longest question the input accepts
)

// QuestionInput is the single line prompt where the user types a question.
type QuestionInput struct {
	inner  textinput.Model
	styles *styles.Styles
	width  int
}

// NewQuestionInput builds a focused prompt ready for typing.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "Ask a question..."
	field.CharLimit = questionLimit
	field.Width = defaultWidth
	field.Focus()

	return &QuestionInput{inner: field, styles: s, width: defaultWidth}
}

// Init starts the cursor blink.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards messages to the underlying field.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.inner, cmd = q.inner.Update(msg)
	return q, cmd
}

// View renders the label and the field on one line.
func (q *QuestionInput) View() string {
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		q.styles.Title.Render("Ask: "),
		q.styles.InputField.Render(q.inner.View()),
	)
}

// Value returns the text typed so far.
func (q *QuestionInput) Value() string {
	return q.inner.Value()
}

// SetValue replaces the typed text.
func (q *QuestionInput) SetValue(value string) {
	q.inner.SetValue(value)
}

// Focus gives the field the cursor.
func (q *QuestionInput) Focus() tea.Cmd {
	return q.inner.Focus()
}

// Blur takes the cursor away.
func (q *QuestionInput) Blur() {
	q.inner.Blur()
}

// Focused reports whether the field has the cursor.
func (q *QuestionInput) Focused() bool {
	return q.inner.Focused()
}

// SetWidth resizes the component, keeping the field usable on narrow
// terminals.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.inner.Width = max(width-labelReserve, minFieldWidth)
}

// Width returns the width last set.
func (q *QuestionInput) Width() int {
	return q.width
}

// Reset clears the field.
func (q *QuestionInput) Reset() {
	q.inner.Reset()
}
