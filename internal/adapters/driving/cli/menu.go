package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/tui"
)

// isTerminal reports whether stdin is attached to a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// menuCmd represents the menu command.
var menuCmd = &cobra.Command{
	Use:     "menu",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive menu",
	Long: `Launch the interactive terminal menu.

The menu lists tasks, adds and edits them, toggles completion, and
offers a command line for the assistant.

Controls:
  1-5      - Pick a menu item
  ↑/k, ↓/j - Navigate
  a        - Add task
  e/Enter  - Edit task
  space    - Toggle done
  d        - Delete task
  Esc      - Back / Cancel
  ?        - Help
  q        - Quit`,
	RunE: runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if !isTerminal() {
		return errors.New("the menu needs an interactive terminal")
	}

	tasks, err := requireTasks()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(tasks, agentService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	watchPrompts(cmd.Context())

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
