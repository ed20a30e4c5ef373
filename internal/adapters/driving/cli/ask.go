package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask <request...>",
	Short: "Manage tasks in natural language",
	Long: `Sends the request to the assistant, which can add, list, update,
delete and look up tasks and check the weather.

Requires an OpenAI API key (see 'todo config set-key').

Examples:
  todo ask "remind me to pay rent on 1 november"
  todo ask what is due tomorrow?
  todo ask mark the milk task as done`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if agentService == nil {
		return errors.New("agent service not configured")
	}
	if !agentService.Available() {
		return fmt.Errorf("%w: set an API key with 'todo config set-key' or OPENAI_API_KEY", domain.ErrLLMUnavailable)
	}

	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		return fmt.Errorf("%w: request must not be empty", domain.ErrInvalidArgument)
	}

	output, err := agentService.Run(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("assistant failed: %w", err)
	}
	cmd.Println(output)
	return nil
}
