package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/ansa/internal/core/domain"
)

// Options scope the ask session.
type Options struct {
	// OwnerID scopes retrieval and browsing to a single owner.
	OwnerID string

	// ThemeID scopes retrieval and browsing to a topic collection.
	ThemeID string

	// TopK is the grounding document count. Zero uses the configured
	// default.
	TopK int
}

// App is the root Bubbletea model for the ask session. It multiplexes
// the chat, document browser, content, and help views.
type App struct {
	// ports holds the injected service interfaces.
	ports *Ports

	// opts carries the session scope.
	opts Options

	// styles provides the colour theme.
	styles *styles.Styles

	// keymap defines the keybindings.
	keymap *keymap.KeyMap

	// ctx is the context for service calls.
	ctx context.Context

	// chatView is the question-and-answer session view.
	chatView *chat.View

	// documentsView is the document browser.
	documentsView *documents.View

	// docContentView shows a single document.
	docContentView *doccontent.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// selectedDocument is the document open in the content view.
	selectedDocument *domain.Document

	// width and height are the terminal dimensions.
	width  int
	height int

	// ready is set after the first window size message.
	ready bool

	// err holds the last error for display.
	err error
}

// Compile-time check that App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the ask session application.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if ports == nil {
		return nil, ErrInvalidPorts
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:  ports,
		opts:   opts,
		styles: s,
		keymap: km,
		ctx:    context.Background(),
		chatView: chat.NewView(s, km, ports.Query, chat.Options{
			OwnerID: opts.OwnerID,
			ThemeID: opts.ThemeID,
			TopK:    opts.TopK,
		}),
		documentsView:  documents.NewView(s, ports.Document, opts.OwnerID, opts.ThemeID),
		docContentView: doccontent.NewView(s, ports.Document),
		currentView:    messages.ViewChat,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView = a.chatView.WithContext(ctx)
	a.documentsView = a.documentsView.WithContext(ctx)
	a.docContentView = a.docContentView.WithContext(ctx)
	return a
}

// Init initialises the application.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("ansa - Ask"),
		a.chatView.Init(),
		a.loadSettings(),
	)
}

// loadSettings returns a command that fetches provider settings for the
// status bar. Nil when no settings service is wired.
func (a *App) loadSettings() tea.Cmd {
	if a.ports.Settings == nil {
		return nil
	}
	return func() tea.Msg {
		settings, err := a.ports.Settings.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages and routes them to the active view.
//
//nolint:gocognit,gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		return a.handleViewChanged(msg)

	case messages.DocumentSelected:
		doc := msg.Document
		a.selectedDocument = &doc
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(msg.Document)

	case messages.DocumentsLoaded:
		var cmd tea.Cmd
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentContentLoaded:
		var cmd tea.Cmd
		a.docContentView, cmd = a.docContentView.Update(msg)
		return a, cmd

	case messages.AnswerReceived, messages.SettingsLoaded:
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forwardToActiveView(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	// Everything else, spinner ticks and cursor blinks included, goes
	// to the chat view, which owns the only animated components.
	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	// F1 toggles help from anywhere
	if keymap.Matches(msg.String(), a.keymap.Help) {
		if a.currentView == messages.ViewHelp {
			a.currentView = messages.ViewChat
			return a, a.chatView.Focus()
		}
		a.currentView = messages.ViewHelp
		return a, nil
	}

	switch a.currentView {
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewChat
			return a, a.chatView.Focus()
		}
		return a, nil

	case messages.ViewDocuments:
		var cmd tea.Cmd
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.ViewDocContent:
		var cmd tea.Cmd
		a.docContentView, cmd = a.docContentView.Update(msg)
		return a, cmd

	case messages.ViewChat:
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleViewChanged switches the active view.
func (a *App) handleViewChanged(msg messages.ViewChanged) (tea.Model, tea.Cmd) {
	a.currentView = msg.View

	switch msg.View {
	case messages.ViewDocuments:
		a.documentsView.Reset()
		return a, a.documentsView.Load()
	case messages.ViewChat:
		return a, a.chatView.Focus()
	case messages.ViewDocContent, messages.ViewHelp:
		return a, nil
	}

	return a, nil
}

// forwardToActiveView sends a message to whichever view is showing.
func (a *App) forwardToActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View renders the active view.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	}

	return a.chatView.View()
}

// viewHelp renders the static help screen.
func (a *App) viewHelp() string {
	title := a.styles.Title.Render("Ansa Help")
	section := a.styles.Subtitle.Render
	help := a.styles.Help.Render

	return title + "\n\n" +
		section("Chat") + "\n" +
		help("  enter        ask a question\n") +
		help("  ↑/↓          scroll the transcript\n") +
		help("  pgup/pgdn    scroll faster\n") +
		help("  tab          browse documents\n") +
		help("  esc          quit\n") +
		"\n" +
		section("Documents") + "\n" +
		help("  ↑/↓ or j/k   navigate\n") +
		help("  enter        open a document\n") +
		help("  r            reload the list\n") +
		help("  esc          back to chat\n") +
		"\n" +
		section("General") + "\n" +
		help("  f1           toggle help\n") +
		help("  ctrl+c       quit\n") +
		"\n" +
		help("Press esc to return.")
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.chatView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
}

// CurrentView returns the active view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Question returns the question currently being typed.
func (a *App) Question() string {
	return a.chatView.Question()
}

// ConversationID returns the session's conversation identifier.
func (a *App) ConversationID() string {
	return a.chatView.ConversationID()
}

// Err returns the last error, if any.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}
