// Package keymap defines the TUI keybindings in one place so views and
// help screens stay in sync.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the TUI responds to. The chat view owns
// regular characters for typing, so global bindings stick to control
// keys and function keys.
type KeyMap struct {
	Quit      key.Binding // exit the application
	Help      key.Binding // toggle the help view
	Back      key.Binding // return to the previous view
	Submit    key.Binding // send the typed question
	Documents key.Binding // open the document browser
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding // confirm a selection
	Reload    key.Binding // refresh the current listing
	PageUp    key.Binding
	PageDown  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:      binding("ctrl+c", "quit", "ctrl+c"),
		Help:      binding("f1", "help", "f1"),
		Back:      binding("esc", "back", "esc"),
		Submit:    binding("enter", "ask", "enter"),
		Documents: binding("tab", "documents", "tab"),
		Up:        binding("↑/k", "up", "up", "k"),
		Down:      binding("↓/j", "down", "down", "j"),
		Select:    binding("enter", "open", "enter"),
		Reload:    binding("r", "reload", "r"),
		PageUp:    binding("pgup", "page up", "pgup", "ctrl+u"),
		PageDown:  binding("pgdn", "page down", "pgdown", "ctrl+d"),
	}
}

// binding builds a key.Binding with its help entry in one call.
func binding(helpKey, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// ChatHelp lists the bindings shown while chatting.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Documents, k.Help, k.Quit}
}

// BrowseHelp lists the bindings shown while browsing documents.
func (k *KeyMap) BrowseHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.Back}
}

// FullHelp groups all bindings for the help view, three per row.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Up, k.Down},
		{k.Documents, k.Select, k.Reload},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches reports whether keyStr is one of the binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
