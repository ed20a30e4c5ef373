// Package styles holds the colour palette and lipgloss styles shared by the
// TUI views.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette. Accent colours must differ from each other.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color
}

// DefaultTheme returns the palette used when none is configured.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2E9E6B"),
		Secondary:  lipgloss.Color("#4FA3C7"),
		Foreground: lipgloss.Color("#D8DEE9"),
		Muted:      lipgloss.Color("#7B8494"),
		Success:    lipgloss.Color("#8FD694"),
		Warning:    lipgloss.Color("#E8C468"),
		Error:      lipgloss.Color("#E06C75"),
		Border:     lipgloss.Color("#4C566A"),
		Bar:        lipgloss.Color("#1F232B"),
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Label    lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style

	// Done renders completed tasks, Due renders open tasks with a due date.
	Done lipgloss.Style
	Due  lipgloss.Style

	// Prompt renders what the user typed to the assistant.
	Prompt lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField   lipgloss.Style
	FocusedField lipgloss.Style
	StatusBar    lipgloss.Style
}

// NewStyles builds styles from theme, falling back to DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	field := func(border lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
	}

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Primary).Bold(true),
		Label:    fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Help:     fg(theme.Muted).Italic(true),
		Selected: fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Done:     fg(theme.Muted).Strikethrough(true),
		Due:      fg(theme.Warning),
		Prompt:   fg(theme.Secondary),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning).Bold(true),

		InputField:   field(theme.Border),
		FocusedField: field(theme.Primary),
		StatusBar:    fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
