package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/todo-agent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "todo-cli-test")
	if err != nil {
		panic(err)
	}
	defaultConfigDir = func() (string, error) { return dir, nil }
	for _, name := range []string{"OPENAI_API_KEY", "TODO_DB", "TODO_OPENAI_API_KEY", "TODO_HTTP_ADDR"} {
		os.Unsetenv(name)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// scriptedLLM replies with a fixed answer and no tool calls.
type scriptedLLM struct {
	reply string
}

func (s *scriptedLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (driven.ChatReply, error) {
	return driven.ChatReply{Content: s.reply}, nil
}

func (s *scriptedLLM) ModelName() string            { return "scripted" }
func (s *scriptedLLM) Ping(_ context.Context) error { return nil }
func (s *scriptedLLM) Close() error                 { return nil }

// setupTestServices injects in-memory services. A nil llm leaves the agent unavailable.
func setupTestServices(t *testing.T, llm driven.LLMService) *services.TaskService {
	t.Helper()
	tasks := services.NewTaskService(memory.NewTaskStore())
	toolbox, err := services.NewToolbox(tasks, nil)
	if err != nil {
		t.Fatalf("NewToolbox: %v", err)
	}
	SetServices(tasks, services.NewAgentService(llm, toolbox))
	t.Cleanup(func() { SetServices(nil, nil) })
	return tasks
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

// executeContext runs the root command under ctx. Flag values persist on
// the package-level commands, so they are reset afterwards.
func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
		closeAll()
	}()

	setContext(rootCmd, ctx)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// setContext hands ctx to cmd and every subcommand. Cobra only passes the
// root context down to commands that have none, so a context from an
// earlier run would otherwise stick.
func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(c, ctx)
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func strPtr(s string) *string { return &s }

