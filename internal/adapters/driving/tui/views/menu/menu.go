// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/styles"
)

// Item is a menu entry. Activating it emits Msg, or quits when Quit is set.
type Item struct {
	Label string
	Msg   tea.Msg
	Quit  bool
}

// View is the start screen of the TUI.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "View all tasks", Msg: messages.ViewChanged{View: messages.ViewTasks}},
			{Label: "Add task", Msg: messages.EditRequested{}},
			{Label: "Ask the assistant", Msg: messages.ViewChanged{View: messages.ViewAgent}},
			{Label: "Help", Msg: messages.ViewChanged{View: messages.ViewHelp}},
			{Label: "Quit", Quit: true},
		},
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the selection and activates items.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil

		case "enter":
			return v, v.activate(v.selected)

		case "q":
			return v, tea.Quit
		}

		// Number keys pick an item directly.
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(v.items) {
			v.selected = n - 1
			return v, v.activate(v.selected)
		}
	}

	return v, nil
}

func (v *View) activate(index int) tea.Cmd {
	item := v.items[index]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return item.Msg
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Todo"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Tasks with an AI assistant"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		row := strconv.Itoa(i+1) + ". " + item.Label
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + row))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-5/Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu items.
func (v *View) Items() []Item {
	return v.items
}
