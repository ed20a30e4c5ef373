package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("verbose", false, "")
	fs.String("db", "", "")
	fs.String("addr", ":8000", "")
	return fs
}

func TestResolveSettings_Defaults(t *testing.T) {
	dir := t.TempDir()

	v, err := newViper(filepath.Join(dir, "config.toml"), testFlags())
	require.NoError(t, err)
	s := resolveSettings(v, dir)

	assert.Equal(t, filepath.Join(dir, "todo.db"), s.DBPath)
	assert.Equal(t, "gpt-4o-mini", s.OpenAIModel)
	assert.Equal(t, ":8000", s.HTTPAddr)
	assert.Equal(t, 2.0, s.AgentRPS)
	assert.Equal(t, 8, s.AgentMaxSteps)
	assert.Equal(t, time.Duration(0), s.OpTimeout)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Empty(t, s.OpenAIKey)
	assert.False(t, s.Verbose)
}

func TestResolveSettings_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[db]
path = "/tmp/from-file.db"

[openai]
api_key = "sk-file"
model = "gpt-4o"

[agent]
max_steps = 3

[storage]
op_timeout = "5s"

[log]
level = "debug"
format = "json"
`)

	v, err := newViper(path, testFlags())
	require.NoError(t, err)
	s := resolveSettings(v, dir)

	assert.Equal(t, "/tmp/from-file.db", s.DBPath)
	assert.Equal(t, "sk-file", s.OpenAIKey)
	assert.Equal(t, "gpt-4o", s.OpenAIModel)
	assert.Equal(t, 3, s.AgentMaxSteps)
	assert.Equal(t, 5*time.Second, s.OpTimeout)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
}

func TestResolveSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[db]
path = "/tmp/from-file.db"

[openai]
api_key = "sk-file"
model = "gpt-4o"
`)

	// env beats file
	t.Setenv("TODO_DB", "/tmp/from-env.db")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TODO_OPENAI_MODEL", "gpt-env")

	fs := testFlags()
	v, err := newViper(path, fs)
	require.NoError(t, err)
	s := resolveSettings(v, dir)
	assert.Equal(t, "/tmp/from-env.db", s.DBPath)
	assert.Equal(t, "sk-env", s.OpenAIKey)
	assert.Equal(t, "gpt-env", s.OpenAIModel)

	// flags beat env
	require.NoError(t, fs.Set("db", "/tmp/from-flag.db"))
	require.NoError(t, fs.Set("verbose", "true"))
	require.NoError(t, fs.Set("addr", "127.0.0.1:9000"))
	v, err = newViper(path, fs)
	require.NoError(t, err)
	s = resolveSettings(v, dir)
	assert.Equal(t, "/tmp/from-flag.db", s.DBPath)
	assert.True(t, s.Verbose)
	assert.Equal(t, "127.0.0.1:9000", s.HTTPAddr)
}

func TestResolveSettings_DBFromEnv(t *testing.T) {
	t.Setenv("TODO_DB", "/tmp/from-env.db")

	t.Run("no config file", func(t *testing.T) {
		dir := t.TempDir()
		v, err := newViper(filepath.Join(dir, "config.toml"), testFlags())
		require.NoError(t, err)
		assert.Equal(t, "/tmp/from-env.db", resolveSettings(v, dir).DBPath)
	})

	t.Run("config file with a db table", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, `
[db]
path = "/tmp/from-file.db"
`)
		v, err := newViper(path, testFlags())
		require.NoError(t, err)
		assert.Equal(t, "/tmp/from-env.db", resolveSettings(v, dir).DBPath)
	})
}

func TestResolveSettings_PrefixedEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TODO_HTTP_ADDR", ":7000")
	t.Setenv("TODO_AGENT_MAX_STEPS", "3")
	t.Setenv("TODO_DB_PATH", "/tmp/prefixed.db")

	v, err := newViper(filepath.Join(dir, "config.toml"), testFlags())
	require.NoError(t, err)
	s := resolveSettings(v, dir)

	assert.Equal(t, ":7000", s.HTTPAddr)
	assert.Equal(t, 3, s.AgentMaxSteps)
	assert.Equal(t, "/tmp/prefixed.db", s.DBPath)
}

func TestEnvNames(t *testing.T) {
	names := envNames()

	assert.Equal(t, []string{"TODO_DB", "TODO_DB_PATH"}, names[keyDBPath])
	assert.Equal(t, []string{"OPENAI_API_KEY", "TODO_OPENAI_API_KEY"}, names[keyOpenAIKey])
	assert.Equal(t, []string{"TODO_OPENAI_MODEL"}, names[keyOpenAIModel])
	assert.Equal(t, []string{"TODO_VERBOSE"}, names[keyVerbose])
	assert.Len(t, names, len(knownKeys)+1)
}

func TestResolveSettings_UnchangedFlagDoesNotOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[http]
addr = ":9999"
`)

	v, err := newViper(path, testFlags())
	require.NoError(t, err)

	assert.Equal(t, ":9999", resolveSettings(v, dir).HTTPAddr)
}

func TestNewViper_MalformedConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "this is = = not toml")

	_, err := newViper(path, testFlags())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, isKnownKey("openai.api_key"))
	assert.True(t, isKnownKey("storage.op_timeout"))
	assert.False(t, isKnownKey("verbose"))
	assert.False(t, isKnownKey("search.mode"))
}
