// Package styles holds the colour theme and the shared lipgloss styles
// built from it.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the colour palette every view draws from.
type Theme struct {
	Primary    lipgloss.Color // main accent
	Secondary  lipgloss.Color // secondary accent
	Background lipgloss.Color
	Foreground lipgloss.Color // default text
	Muted      lipgloss.Color // de-emphasised text
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme is a dark palette with a teal accent.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2DD4BF"), // teal
		Secondary:  lipgloss.Color("#818CF8"), // indigo
		Background: lipgloss.Color("#16161E"),
		Foreground: lipgloss.Color("#C9D1D9"),
		Muted:      lipgloss.Color("#6B7280"),
		Success:    lipgloss.Color("#86EFAC"),
		Warning:    lipgloss.Color("#FDE68A"),
		Error:      lipgloss.Color("#FCA5A5"),
		Border:     lipgloss.Color("#3B3B4F"),
	}
}

// Styles carries the pre-built styles the views share, so every view
// renders text the same way.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style // view headers
	Subtitle lipgloss.Style // secondary headers
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style // highlighted list rows

	Question lipgloss.Style // the asker's side of the transcript
	Answer   lipgloss.Style // the generated side of the transcript
	Citation lipgloss.Style // source references under an answer

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles builds the shared styles from a theme. A nil theme selects
// the default palette.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	s := &Styles{theme: theme}

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	s.Subtitle = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	s.Normal = lipgloss.NewStyle().Foreground(theme.Foreground)
	s.Muted = lipgloss.NewStyle().Foreground(theme.Muted)
	s.Selected = lipgloss.NewStyle().Bold(true).Foreground(theme.Foreground).Background(theme.Primary)

	s.Question = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	s.Answer = lipgloss.NewStyle().Foreground(theme.Foreground)
	s.Citation = lipgloss.NewStyle().Italic(true).Foreground(theme.Muted)

	s.Error = lipgloss.NewStyle().Foreground(theme.Error)
	s.Success = lipgloss.NewStyle().Foreground(theme.Success)
	s.Warning = lipgloss.NewStyle().Foreground(theme.Warning)

	s.InputField = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	s.StatusBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Background(lipgloss.Color("#101018")).
		Padding(0, 1)
	s.Help = lipgloss.NewStyle().Foreground(theme.Muted)
	s.Border = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return s
}

// DefaultStyles builds styles over the default theme.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

// Theme returns the palette these styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
