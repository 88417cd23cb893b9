// Package chat provides the question-and-answer session view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// ErrNoQueryService is returned when no query service is available.
var ErrNoQueryService = errors.New("query service not available")

// Options scope the session's queries.
type Options struct {
	// OwnerID scopes retrieval to a single owner.
	OwnerID string

	// ThemeID scopes retrieval to a topic collection.
	ThemeID string

	// TopK is the grounding document count. Zero uses the configured default.
	TopK int
}

// View represents the chat session with transcript, input, and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusbar  *status.Bar
	spinner    spinner.Model

	queryService driving.QueryService
	ctx          context.Context
	opts         Options

	// conversationID links every question in this session so the
	// pipeline can pull prior turns into the prompt.
	conversationID string

	width    int
	height   int
	ready    bool
	err      error
	thinking bool
}

// NewView creates a new chat view with a fresh conversation.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService, opts Options) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(s.Subtitle),
	)

	return &View{
		styles:         s,
		keymap:         km,
		input:          input.NewQuestionInput(s),
		transcript:     transcript.New(s),
		statusbar:      status.NewBar(s, km),
		spinner:        sp,
		queryService:   queryService,
		ctx:            context.Background(),
		opts:           opts,
		conversationID: uuid.NewString(),
		width:          80,
		height:         24,
		ready:          false,
		thinking:       false,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.transcript.SetThinkingFrame(v.spinner.View())
		return v, cmd

	case messages.AnswerReceived:
		v.handleAnswerReceived(msg)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err == nil && msg.Settings != nil {
			v.statusbar.SetModel(string(msg.Settings.LLM.Provider) + "/" + msg.Settings.LLM.Model)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.thinking = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	// Forward to input component
	var inputCmd tea.Cmd
	v.input, inputCmd = v.input.Update(msg)
	return v, inputCmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Esc from the session's root view exits
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	// Tab opens the document browser
	if msg.Type == tea.KeyTab {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}

	// Enter submits the question unless an answer is still pending
	if msg.Type == tea.KeyEnter {
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.thinking {
			return v, nil
		}
		return v.submit(question)
	}

	// Arrow and page keys scroll the transcript; letters go to the input
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyUp:
		v.transcript.ScrollUp()
		return v, nil
	case tea.KeyDown:
		v.transcript.ScrollDown()
		return v, nil
	case tea.KeyPgUp:
		v.transcript.PageUp()
		return v, nil
	case tea.KeyPgDown:
		v.transcript.PageDown()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit starts answering the question asynchronously.
func (v *View) submit(question string) (*View, tea.Cmd) {
	v.transcript.Append(question)
	v.input.SetValue("")
	v.thinking = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)

	return v, tea.Batch(v.ask(question), v.spinner.Tick)
}

// ask returns a command that runs the query pipeline.
func (v *View) ask(question string) tea.Cmd {
	req := domain.QueryRequest{
		Question:       question,
		OwnerID:        v.opts.OwnerID,
		ThemeID:        v.opts.ThemeID,
		ConversationID: v.conversationID,
		TopK:           v.opts.TopK,
	}

	return func() tea.Msg {
		if v.queryService == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		return messages.AnswerReceived{Answer: v.queryService.Answer(v.ctx, req)}
	}
}

// handleAnswerReceived folds a finished answer into the transcript.
func (v *View) handleAnswerReceived(msg messages.AnswerReceived) {
	v.thinking = false
	v.transcript.Complete(msg.Answer)

	if msg.Answer.Meta.Error != "" {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Answer.Meta.Error)
		return
	}

	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetTurns(v.transcript.Turns())
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := v.styles.Title.Render("Ansa")
	sections = append(sections, header, "")

	sections = append(sections, v.transcript.View(), "")

	if v.err != nil {
		errView := v.styles.Error.Render("Error: " + v.err.Error())
		sections = append(sections, errView, "")
	}

	sections = append(sections, v.input.View(), "")

	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.SetDimensions(width, height-9) // Reserve space for header, input, status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the question currently being typed.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the typed question.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// ConversationID returns the session's conversation identifier.
func (v *View) ConversationID() string {
	return v.conversationID
}

// Entries returns the conversation turns.
func (v *View) Entries() []transcript.Entry {
	return v.transcript.Entries()
}

// Thinking returns whether an answer is pending.
func (v *View) Thinking() bool {
	return v.thinking
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Focus puts the cursor back in the question input.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}

// Reset clears the typed question and any error, keeping the transcript.
func (v *View) Reset() {
	v.input.SetValue("")
	v.err = nil
	if !v.thinking {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("")
	}
}
