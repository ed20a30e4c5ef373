// Package cli provides the cobra command tree for the todo binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/todo-agent/internal/adapters/driven/config/file"
	"github.com/custodia-labs/todo-agent/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/todo-agent/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/todo-agent/internal/adapters/driven/weather/wttr"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
	"github.com/custodia-labs/todo-agent/internal/core/ports/driving"
	"github.com/custodia-labs/todo-agent/internal/core/services"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

// annotationConfigOnly marks commands that only need the config store.
const annotationConfigOnly = "todo/config-only"

// version is set at build time via SetVersion.
var version = "dev"

var (
	taskService  driving.TaskService
	agentService driving.AgentService
	configStore  driven.ConfigStore
	promptStore  *file.PromptStore
	settings     Settings

	// injected is true when services were supplied through SetServices.
	injected bool

	// configInjected is true when the config store was supplied through SetConfigStore.
	configInjected bool

	// closers release resources opened by bootstrap, in reverse order.
	closers []func() error

	// defaultConfigDir resolves the config directory when --config-dir is unset.
	defaultConfigDir = file.DefaultDir
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A todo list with an AI assistant",
	Long: `todo keeps a task list in a local SQLite database.

Tasks can be managed with plain commands (add, list, update, delete),
through the interactive menu, over HTTP, as an MCP server, or in natural
language with 'todo ask' when an OpenAI API key is configured.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bootstrap,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("db", "", "path to the SQLite database (default ~/.todo/todo.db)")
	flags.String("config-dir", "", "configuration directory (default ~/.todo)")
}

// SetVersion sets the version reported by 'todo version'.
func SetVersion(v string) {
	version = v
}

// SetServices injects the task and agent services, skipping bootstrap wiring.
func SetServices(tasks driving.TaskService, agent driving.AgentService) {
	taskService = tasks
	agentService = agent
	injected = tasks != nil
}

// SetConfigStore replaces the TOML config store. Values in store rank
// between environment variables and defaults. A nil store restores the file.
func SetConfigStore(store driven.ConfigStore) {
	configStore = store
	configInjected = store != nil
}

// Execute runs the root command and prints any error as "Error: ...".
func Execute(ctx context.Context) error {
	defer closeAll()

	// cmd.Print* defaults to stderr; task output belongs on stdout.
	rootCmd.SetOut(os.Stdout)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

// bootstrap loads configuration and, unless the command only touches
// config, opens the store and builds the services.
func bootstrap(cmd *cobra.Command, _ []string) error {
	configDir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return fmt.Errorf("getting config-dir flag: %w", err)
	}
	if configDir == "" {
		if configDir, err = defaultConfigDir(); err != nil {
			return err
		}
	}

	if !configInjected && (configStore == nil || filepath.Dir(configStore.Path()) != configDir) {
		store, err := file.NewConfigStore(configDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		configStore = store
	}

	v, err := newViper(configStore.Path(), cmd.Flags())
	if err != nil {
		return err
	}
	if configInjected {
		if err := v.MergeConfigMap(nestKeys(configStore.All())); err != nil {
			return fmt.Errorf("merging config: %w", err)
		}
	}
	settings = resolveSettings(v, configDir)

	logger.Configure(logger.Options{Level: settings.LogLevel, Format: settings.LogFormat})
	logger.SetVerbose(settings.Verbose)
	logger.Debug("config dir %s, database %s", configDir, settings.DBPath)

	if cmd.Annotations[annotationConfigOnly] == "true" || injected {
		return nil
	}
	return buildServices()
}

func buildServices() error {
	closeAll()

	store, err := sqlite.NewStore(settings.DBPath, sqlite.WithOpTimeout(settings.OpTimeout))
	if err != nil {
		return err
	}
	closers = append(closers, store.Close)

	tasks := services.NewTaskService(store)

	weather := wttr.NewClient(wttr.Config{BaseURL: settings.WeatherBaseURL})
	toolbox, err := services.NewToolbox(tasks, weather)
	if err != nil {
		return fmt.Errorf("building toolbox: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(settings.ConfigDir, "prompts"))
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	// Leave llm a nil interface when no key is configured.
	var llm driven.LLMService
	if settings.OpenAIKey != "" {
		svc, err := openai.NewLLMService(openai.LLMConfig{
			APIKey:  settings.OpenAIKey,
			BaseURL: settings.OpenAIBaseURL,
			Model:   settings.OpenAIModel,
		})
		if err != nil {
			return fmt.Errorf("configuring OpenAI: %w", err)
		}
		closers = append(closers, svc.Close)
		llm = svc
	} else {
		logger.Debug("no OpenAI API key configured, natural-language commands disabled")
	}

	taskService = tasks
	agentService = services.NewAgentService(llm, toolbox,
		services.WithMaxSteps(settings.AgentMaxSteps),
		services.WithPromptStore(prompts),
	)
	promptStore = prompts
	return nil
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	closers = nil
}

// requireTasks returns the task service or an error when it is not configured.
func requireTasks() (driving.TaskService, error) {
	if taskService == nil {
		return nil, errors.New("task service not configured")
	}
	return taskService, nil
}

// watchPrompts reloads prompts edited on disk until ctx is done.
func watchPrompts(ctx context.Context) {
	if promptStore == nil {
		return
	}
	err := promptStore.Watch(ctx, func(name string) {
		logger.Info("prompt %q changed on disk, reloaded", name)
	})
	if err != nil {
		logger.Warn("prompt watch disabled: %v", err)
	}
}
