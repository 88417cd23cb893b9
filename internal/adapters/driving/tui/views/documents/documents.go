// Package documents is the corpus browser: a scrollable listing of
// stored documents with keyboard selection.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// ErrNoDocumentService is returned when no document service is available.
var ErrNoDocumentService = errors.New("document service not available")

// linesReserved is the vertical space the title, separators and help
// footer take away from the listing.
const linesReserved = 8

// View is the document browser.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	// ownerID and themeID scope the listing to the session's corpus slice.
	ownerID string
	themeID string

	documents []domain.Document
	cursor    int
	offset    int
	width     int
	height    int
	ready     bool
	err       error
	loading   bool
}

// NewView creates a document browser scoped to one owner and theme.
func NewView(s *styles.Styles, documentService driving.DocumentService, ownerID, themeID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		ownerID:         ownerID,
		themeID:         themeID,
		documents:       []domain.Document{},
	}
}

// WithContext sets the context used for document service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that fetches the document listing.
func (v *View) Load() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}

		docs, err := v.documentService.List(v.ctx, v.ownerID, v.themeID)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the document browser.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		return v, v.handleKey(msg)

	case messages.DocumentsLoaded:
		v.applyListing(msg)

	case messages.ErrorOccurred:
		v.err = msg.Err
	}

	return v, nil
}

func (v *View) applyListing(msg messages.DocumentsLoaded) {
	v.loading = false
	if msg.Err != nil {
		v.err = msg.Err
		return
	}

	v.documents = msg.Documents
	v.err = nil
	if v.cursor >= len(v.documents) {
		v.cursor = 0
		v.offset = 0
	}
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		v.moveCursor(-1)
	case "down", "j":
		v.moveCursor(1)
	case "enter":
		if doc := v.SelectedDocument(); doc != nil {
			opened := *doc
			return func() tea.Msg {
				return messages.DocumentSelected{Document: opened}
			}
		}
	case "r":
		return v.Load()
	case "esc":
		return func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}
	return nil
}

// moveCursor shifts the selection and keeps it on screen. Moves past
// either end of the listing are ignored.
func (v *View) moveCursor(delta int) {
	next := v.cursor + delta
	if next < 0 || next >= len(v.documents) {
		return
	}
	v.cursor = next

	if v.cursor < v.offset {
		v.offset = v.cursor
	} else if page := v.pageSize(); v.cursor >= v.offset+page {
		v.offset = v.cursor - page + 1
	}
}

// pageSize is how many listing rows fit in the current height.
func (v *View) pageSize() int {
	available := v.height - linesReserved
	if available < 1 {
		return 1
	}
	return available
}

// View renders the document browser.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Documents (%d)", len(v.documents))
	if v.themeID != "" {
		title = fmt.Sprintf("Documents - %s (%d)", v.themeID, len(v.documents))
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(v.renderBody())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [r] reload  [esc] back"))

	return b.String()
}

func (v *View) renderBody() string {
	switch {
	case v.loading:
		return v.styles.Muted.Render("Loading documents...")
	case v.err != nil:
		return v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error()))
	case len(v.documents) == 0:
		return v.styles.Muted.Render("No documents in the corpus yet. Use 'ansa ingest' to add some.")
	}

	var b strings.Builder
	page := v.pageSize()
	last := min(v.offset+page, len(v.documents))
	for i := v.offset; i < last; i++ {
		b.WriteString(v.renderRow(i, &v.documents[i]))
		if i < last-1 {
			b.WriteString("\n")
		}
	}

	if len(v.documents) > page {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.offset+1, last, len(v.documents))))
	}
	return b.String()
}

// renderRow draws one listing row: selection marker, title column,
// source column. Titles clip at the tail, sources at the head so the
// filename stays visible.
func (v *View) renderRow(index int, doc *domain.Document) string {
	columnWidth := v.width/2 - 4
	if columnWidth < 10 {
		columnWidth = 10
	}

	title := clipTail(doc.DisplayTitle(), columnWidth)
	source := clipHead(doc.Source, columnWidth)

	if index == v.cursor {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", columnWidth, title, source))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", columnWidth, title)) +
		v.styles.Muted.Render(source)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current listing.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the cursor position.
func (v *View) SelectedIndex() int {
	return v.cursor
}

// SelectedDocument returns the document under the cursor, or nil when
// the listing is empty.
func (v *View) SelectedDocument() *domain.Document {
	if v.cursor < len(v.documents) {
		return &v.documents[v.cursor]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Reset clears the selection so the next visit starts at the top.
func (v *View) Reset() {
	v.cursor = 0
	v.offset = 0
	v.err = nil
}

func clipTail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func clipHead(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
