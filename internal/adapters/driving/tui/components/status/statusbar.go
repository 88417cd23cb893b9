// Package status renders the one-line status bar under the chat
// transcript: session state on the left, keybinding hints on the
// right.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/styles"
)

// State is the session state the bar displays.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar is the status bar component. It is passive: the app pushes state
// into it through the Set methods rather than via messages.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	model   string
	turns   int
	width   int
}

// NewBar creates a status bar. Nil styles or keymap select the
// defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

func (b *Bar) Init() tea.Cmd {
	return nil
}

func (b *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return b, nil
}

// View renders the bar: left segment, padding, right segment, clipped
// to the configured width.
func (b *Bar) View() string {
	left := b.leftSegment()
	right := b.rightSegment()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// leftSegment describes what the session is doing right now.
func (b *Bar) leftSegment() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return b.styles.Error.Render("Error")
	case StateReady:
		if b.turns > 0 {
			return b.styles.Normal.Render(fmt.Sprintf("%d turns", b.turns)) + b.modelSuffix()
		}
		return b.styles.Muted.Render("Ready") + b.modelSuffix()
	}
	return b.styles.Muted.Render("Ready")
}

// modelSuffix names the active model, when known.
func (b *Bar) modelSuffix() string {
	if b.model == "" {
		return ""
	}
	return b.styles.Muted.Render(" · " + b.model)
}

// rightSegment lists the keybindings that apply in the current state.
// While a query runs, only quit is offered.
func (b *Bar) rightSegment() string {
	bindings := b.keymap.ChatHelp()
	if b.state == StateThinking {
		bindings = []key.Binding{b.keymap.Quit}
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the displayed session state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the displayed session state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the error detail shown in the error state.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the error detail.
func (b *Bar) Message() string {
	return b.message
}

// SetModel sets the model identifier shown when idle.
func (b *Bar) SetModel(model string) {
	b.model = model
}

// Model returns the model identifier.
func (b *Bar) Model() string {
	return b.model
}

// SetTurns sets the completed conversation turn count.
func (b *Bar) SetTurns(turns int) {
	b.turns = turns
}

// Turns returns the completed conversation turn count.
func (b *Bar) Turns() int {
	return b.turns
}

// SetWidth sets the bar width in cells.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the bar width in cells.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.turns = 0
}
