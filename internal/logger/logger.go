// Package logger provides leveled logging for the todo CLI and server.
// Messages are written with charmbracelet/log. When verbose mode is enabled
// via the --verbose flag, debug messages are printed to stderr to help users
// follow what the agent and the store are doing.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Options configures the package logger.
type Options struct {
	// Level is one of debug, info, warn or error. Defaults to warn.
	Level string

	// Format is one of text, json or logfmt. Defaults to text.
	Format string

	// Timestamps prefixes each line with the time.
	Timestamps bool
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	opts              = Options{Level: "warn", Format: "text"}
	base              = build()
)

// build creates the underlying logger from the current state.
// Callers must hold mu.
func build() *log.Logger {
	level := ParseLevel(opts.Level)
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(output, log.Options{
		Level:           level,
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.Timestamps,
		Prefix:          "todo",
	})
}

// Configure replaces the logger options.
func Configure(o Options) {
	mu.Lock()
	defer mu.Unlock()
	opts = o
	base = build()
}

// SetVerbose enables or disables verbose logging.
// Verbose mode forces the debug level regardless of the configured level.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// With returns a structured child logger carrying keyvals.
func With(keyvals ...any) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With(keyvals...)
}

// Debug prints a message if the debug level is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debug(fmt.Sprintf(format, args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		base.Debug("=== " + name + " ===")
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warn(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Error(fmt.Sprintf(format, args...))
}

// ParseLevel maps a level name to a log.Level. Unknown names map to warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter maps a format name to a log.Formatter.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
