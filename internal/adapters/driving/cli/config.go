package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/todo-agent/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/todo-agent/internal/adapters/driven/weather/wttr"
	"github.com/custodia-labs/todo-agent/internal/core/domain"
)

var configOnly = map[string]string{annotationConfigOnly: "true"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change settings stored in config.toml.

Values resolve in this order: command-line flags, environment variables
(TODO_DB, OPENAI_API_KEY, TODO_<KEY> with dots as underscores), the
config file, then built-in defaults.`,
	Annotations: configOnly,
	RunE:        runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:         "get <key>",
	Short:       "Print the effective value of a setting",
	Args:        cobra.ExactArgs(1),
	Annotations: configOnly,
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Store a setting in config.toml",
	Args:        cobra.ExactArgs(2),
	Annotations: configOnly,
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Args:        cobra.NoArgs,
	Annotations: configOnly,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(configStore.Path())
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the OpenAI API key",
	Long: `Prompts for the OpenAI API key without echoing it, validates it
against the API, and stores it in config.toml.`,
	Args:        cobra.NoArgs,
	Annotations: configOnly,
	RunE:        runConfigSetKey,
}

// readSecret reads a line from the terminal without echo.
var readSecret = readPassword

func init() {
	configSetKeyCmd.Flags().Bool("skip-validate", false, "store the key without contacting the API")
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd, configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cmd.Printf("Config file: %s\n\n", configStore.Path())

	values := effectiveValues()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		cmd.Printf("  %-20s %s\n", k, values[k])
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !isKnownKey(key) {
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrInvalidArgument, key, strings.Join(knownKeys, ", "))
	}
	cmd.Println(effectiveValues()[key])
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if !isKnownKey(key) {
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrInvalidArgument, key, strings.Join(knownKeys, ", "))
	}

	value, err := parseValue(key, raw)
	if err != nil {
		return err
	}
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	shown := raw
	if key == keyOpenAIKey {
		shown = maskAPIKey(raw)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	cmd.Print("Enter OpenAI API key: ")
	apiKey := strings.TrimSpace(readSecret(cmd.InOrStdin()))
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	skip, _ := cmd.Flags().GetBool("skip-validate")
	if !skip {
		cmd.Print("Validating key... ")
		if err := validateKey(cmd.Context(), apiKey); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("API key validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := configStore.Set(keyOpenAIKey, apiKey); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	cmd.Printf("API key stored: %s\n", maskAPIKey(apiKey))
	return nil
}

func validateKey(ctx context.Context, apiKey string) error {
	llm, err := openai.NewLLMService(openai.LLMConfig{
		APIKey:  apiKey,
		BaseURL: settings.OpenAIBaseURL,
		Model:   settings.OpenAIModel,
		Timeout: 15 * time.Second,
	})
	if err != nil {
		return err
	}
	defer llm.Close()
	return llm.Ping(ctx)
}

// effectiveValues renders every known key as resolved for this run.
func effectiveValues() map[string]string {
	apiKey := "(not set)"
	if settings.OpenAIKey != "" {
		apiKey = maskAPIKey(settings.OpenAIKey)
	}
	return map[string]string{
		keyDBPath:         settings.DBPath,
		keyOpenAIKey:      apiKey,
		keyOpenAIModel:    settings.OpenAIModel,
		keyOpenAIBaseURL:  orDefault(settings.OpenAIBaseURL, openai.DefaultBaseURL),
		keyHTTPAddr:       settings.HTTPAddr,
		keyHTTPAgentRPS:   strconv.FormatFloat(settings.AgentRPS, 'g', -1, 64),
		keyAgentMaxSteps:  strconv.Itoa(settings.AgentMaxSteps),
		keyOpTimeout:      settings.OpTimeout.String(),
		keyLogLevel:       settings.LogLevel,
		keyLogFormat:      settings.LogFormat,
		keyWeatherBaseURL: orDefault(settings.WeatherBaseURL, wttr.DefaultBaseURL),
	}
}

// parseValue converts raw to the type stored for key.
func parseValue(key, raw string) (any, error) {
	switch key {
	case keyAgentMaxSteps:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidArgument, key)
		}
		return n, nil
	case keyHTTPAgentRPS:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidArgument, key)
		}
		return f, nil
	case keyOpTimeout:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("%w: %s must be a duration such as 5s", domain.ErrInvalidArgument, key)
		}
		return raw, nil
	}
	return raw, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read password without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
