// Package agent provides the natural-language command view for the TUI.
package agent

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
)

// maxHistory bounds the exchanges kept on screen.
const maxHistory = 20

// unavailableText is shown when no LLM is configured.
const unavailableText = "The assistant is unavailable. Set an OpenAI API key with 'todo config set-key' and restart."

// Exchange is one command and the agent's answer.
type Exchange struct {
	Input  string
	Output string
	Err    error
}

// View is a prompt line that sends commands to the agent and shows its replies.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	service driving.AgentService
	prompt  *input.Field
	history []Exchange
	working bool
	width   int
	height  int
	ready   bool
}

// NewView creates a new agent view. service may be nil.
func NewView(ctx context.Context, s *styles.Styles, service driving.AgentService) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		ctx:     ctx,
		styles:  s,
		service: service,
		prompt:  input.NewField(s, "Command", "e.g. add buy milk due tomorrow"),
		width:   80,
		height:  24,
	}
}

// Init initialises the agent view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Focus focuses the prompt.
func (v *View) Focus() tea.Cmd {
	return v.prompt.Focus()
}

// Available reports whether an agent is configured.
func (v *View) Available() bool {
	return v.service != nil && v.service.Available()
}

// Update handles messages for the agent view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.AgentReplied:
		v.working = false
		v.history = append(v.history, Exchange{Input: msg.Input, Output: msg.Output, Err: msg.Err})
		if len(v.history) > maxHistory {
			v.history = v.history[len(v.history)-maxHistory:]
		}
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return v, v.submit()
		}
		if v.working {
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func (v *View) submit() tea.Cmd {
	text := strings.TrimSpace(v.prompt.Value())
	if text == "" || v.working || !v.Available() {
		return nil
	}

	v.prompt.Reset()
	v.working = true
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		out, err := service.Run(ctx, text)
		return messages.AgentReplied{Input: text, Output: out, Err: err}
	}
}

// View renders the prompt and recent exchanges.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Assistant"))
	b.WriteString("\n\n")

	if !v.Available() {
		b.WriteString(v.styles.Warning.Render(unavailableText))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[Esc] Back"))
		return b.String()
	}

	for _, ex := range v.visibleHistory() {
		b.WriteString(v.styles.Prompt.Render("> " + ex.Input))
		b.WriteString("\n")
		if ex.Err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + ex.Err.Error()))
		} else {
			b.WriteString(v.styles.Normal.Render(ex.Output))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(v.prompt.View())
	b.WriteString("\n")
	if v.working {
		b.WriteString(v.styles.Muted.Render("Thinking..."))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[Enter] Send  [Esc] Back"))

	return b.String()
}

// visibleHistory returns the tail of the history that fits; each exchange takes about three lines.
func (v *View) visibleHistory() []Exchange {
	room := (v.height - 8) / 3
	if room < 1 {
		room = 1
	}
	if len(v.history) > room {
		return v.history[len(v.history)-room:]
	}
	return v.history
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.prompt.SetWidth(width)
}

// History returns the recorded exchanges, oldest first.
func (v *View) History() []Exchange {
	return v.history
}

// Working reports whether a command is in flight.
func (v *View) Working() bool {
	return v.working
}
