// Package doccontent is the document reader: full content of one
// stored document with line-based scrolling.
package doccontent

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

// linesReserved is the vertical space the title, metadata line,
// separator and help footer take away from the content area.
const linesReserved = 7

// View is the document reader.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	document *domain.Document
	lines    []string // content wrapped to the current width
	offset   int
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a document reader.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
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

// SetDocument switches the reader to doc and reloads it from the
// store, so the reader always shows current content even after a
// background re-ingest.
func (v *View) SetDocument(doc domain.Document) tea.Cmd {
	v.document = &doc
	v.lines = nil
	v.offset = 0
	v.err = nil
	return v.loadContent(doc.ID)
}

func (v *View) loadContent(id string) tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentContentLoaded{DocumentID: id, Err: ErrNoDocumentService}
		}

		doc, err := v.documentService.Get(v.ctx, id)
		if err != nil {
			return messages.DocumentContentLoaded{DocumentID: id, Err: err}
		}
		return messages.DocumentContentLoaded{DocumentID: id, Document: *doc}
	}
}

// Update handles messages for the document reader.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		return v, v.handleKey(msg)

	case messages.DocumentContentLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			break
		}
		doc := msg.Document
		v.document = &doc
		v.err = nil
		v.reflow()

	case messages.ErrorOccurred:
		v.err = msg.Err
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		v.scrollBy(-1)
	case "down", "j":
		v.scrollBy(1)
	case "pgup", "ctrl+u":
		v.scrollBy(-v.pageSize())
	case "pgdown", "ctrl+d":
		v.scrollBy(v.pageSize())
	case "home", "g":
		v.offset = 0
	case "end", "G":
		v.offset = v.maxOffset()
	case "esc":
		return func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}
	return nil
}

// scrollBy moves the window by delta lines, clamped to the content.
func (v *View) scrollBy(delta int) {
	v.offset += delta
	if v.offset < 0 {
		v.offset = 0
	}
	if max := v.maxOffset(); v.offset > max {
		v.offset = max
	}
}

// reflow re-wraps the document content to the current width. Called on
// every resize and content change.
func (v *View) reflow() {
	if v.document == nil || v.document.Content == "" {
		v.lines = nil
		return
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	raw := strings.Split(v.document.Content, "\n")
	v.lines = make([]string, 0, len(raw))
	for _, line := range raw {
		v.lines = append(v.lines, hardWrap(line, contentWidth)...)
	}
}

// hardWrap splits line into width-sized pieces. A line that fits comes
// back unchanged as a single piece.
func hardWrap(line string, width int) []string {
	if len(line) <= width {
		return []string{line}
	}

	pieces := make([]string, 0, len(line)/width+1)
	for len(line) > width {
		pieces = append(pieces, line[:width])
		line = line[width:]
	}
	if line != "" {
		pieces = append(pieces, line)
	}
	return pieces
}

// pageSize is how many content lines fit in the current height.
func (v *View) pageSize() int {
	available := v.height - linesReserved
	if available < 1 {
		return 1
	}
	return available
}

func (v *View) maxOffset() int {
	max := len(v.lines) - v.pageSize()
	if max < 0 {
		return 0
	}
	return max
}

// View renders the document reader.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil {
		title = v.document.DisplayTitle()
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")

	if v.document != nil {
		b.WriteString(v.styles.Muted.Render(v.metadataLine()))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", v.separatorWidth()))
	b.WriteString("\n\n")
	b.WriteString(v.renderBody())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))

	return b.String()
}

func (v *View) renderBody() string {
	switch {
	case v.loading:
		return v.styles.Muted.Render("Loading content...")
	case v.err != nil:
		return v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error()))
	case len(v.lines) == 0:
		return v.styles.Muted.Render("(No content)")
	}

	var b strings.Builder
	page := v.pageSize()
	last := min(v.offset+page, len(v.lines))
	for i := v.offset; i < last; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		if i < last-1 {
			b.WriteString("\n")
		}
	}

	if len(v.lines) > page {
		percentage := 0
		if v.maxOffset() > 0 {
			percentage = v.offset * 100 / v.maxOffset()
		}
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage, v.offset+1, last, len(v.lines))))
	}
	return b.String()
}

// metadataLine is the source, theme and timestamp summary under the
// title.
func (v *View) metadataLine() string {
	parts := make([]string, 0, 3)
	if v.document.Source != "" {
		parts = append(parts, v.document.Source)
	}
	if v.document.ThemeID != "" {
		parts = append(parts, "theme: "+v.document.ThemeID)
	}
	if !v.document.UpdatedAt.IsZero() {
		parts = append(parts, v.document.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " · ")
}

func (v *View) separatorWidth() int {
	w := v.width - 4
	if w > 60 {
		w = 60
	}
	if w < 1 {
		w = 1
	}
	return w
}

// SetDimensions sets the view dimensions and re-wraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.reflow()
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Content returns the loaded document content.
func (v *View) Content() string {
	if v.document == nil {
		return ""
	}
	return v.document.Content
}

// ScrollOffset returns the current scroll position.
func (v *View) ScrollOffset() int {
	return v.offset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
