package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/custodia-labs/todo-agent/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/todo-agent/internal/core/services"
)

// Configuration keys, in config.toml dot notation.
const (
	keyDBPath         = "db.path"
	keyOpenAIKey      = "openai.api_key"
	keyOpenAIModel    = "openai.model"
	keyOpenAIBaseURL  = "openai.base_url"
	keyHTTPAddr       = "http.addr"
	keyHTTPAgentRPS   = "http.agent_rps"
	keyAgentMaxSteps  = "agent.max_steps"
	keyOpTimeout      = "storage.op_timeout"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
	keyWeatherBaseURL = "weather.base_url"
	keyVerbose        = "verbose"
)

// knownKeys lists the keys accepted by 'todo config set'.
var knownKeys = []string{
	keyDBPath, keyOpenAIKey, keyOpenAIModel, keyOpenAIBaseURL,
	keyHTTPAddr, keyHTTPAgentRPS, keyAgentMaxSteps, keyOpTimeout,
	keyLogLevel, keyLogFormat, keyWeatherBaseURL,
}

// Settings is the resolved runtime configuration.
type Settings struct {
	ConfigDir      string
	DBPath         string
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	HTTPAddr       string
	AgentRPS       float64
	AgentMaxSteps  int
	OpTimeout      time.Duration
	LogLevel       string
	LogFormat      string
	WeatherBaseURL string
	Verbose        bool
}

// envNames maps each key to its environment variables, TODO_<KEY> with dots
// as underscores by default. Do not switch to AutomaticEnv: a set TODO_DB
// then shadows the db table and db.path reads empty.
func envNames() map[string][]string {
	names := map[string][]string{keyVerbose: {"TODO_VERBOSE"}}
	for _, key := range knownKeys {
		names[key] = []string{"TODO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
	}
	names[keyDBPath] = []string{"TODO_DB", "TODO_DB_PATH"}
	names[keyOpenAIKey] = []string{"OPENAI_API_KEY", "TODO_OPENAI_API_KEY"}
	return names
}

// newViper layers flags over env over the config file over defaults.
// TODO_DB and OPENAI_API_KEY are honoured alongside TODO_-prefixed keys
// such as TODO_OPENAI_MODEL.
func newViper(configPath string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(keyOpenAIModel, "gpt-4o-mini")
	v.SetDefault(keyHTTPAddr, httpapi.DefaultAddr)
	v.SetDefault(keyHTTPAgentRPS, httpapi.DefaultAgentRPS)
	v.SetDefault(keyAgentMaxSteps, services.DefaultMaxSteps)
	v.SetDefault(keyOpTimeout, "0s")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "text")

	for key, names := range envNames() {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env: %w", err)
		}
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	for key, name := range map[string]string{
		keyDBPath:   "db",
		keyVerbose:  "verbose",
		keyHTTPAddr: "addr",
	} {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	return v, nil
}

// resolveSettings reads the effective settings from v.
func resolveSettings(v *viper.Viper, configDir string) Settings {
	s := Settings{
		ConfigDir:      configDir,
		DBPath:         v.GetString(keyDBPath),
		OpenAIKey:      strings.TrimSpace(v.GetString(keyOpenAIKey)),
		OpenAIModel:    v.GetString(keyOpenAIModel),
		OpenAIBaseURL:  v.GetString(keyOpenAIBaseURL),
		HTTPAddr:       v.GetString(keyHTTPAddr),
		AgentRPS:       v.GetFloat64(keyHTTPAgentRPS),
		AgentMaxSteps:  v.GetInt(keyAgentMaxSteps),
		OpTimeout:      v.GetDuration(keyOpTimeout),
		LogLevel:       v.GetString(keyLogLevel),
		LogFormat:      v.GetString(keyLogFormat),
		WeatherBaseURL: v.GetString(keyWeatherBaseURL),
		Verbose:        v.GetBool(keyVerbose),
	}
	if s.DBPath == "" {
		s.DBPath = filepath.Join(configDir, "todo.db")
	}
	return s
}

// nestKeys turns dot-notation keys into nested tables.
func nestKeys(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for key, val := range flat {
		parts := strings.Split(key, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = val
	}
	return out
}

func isKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}
