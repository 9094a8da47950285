package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var Logger *log.Logger

// Options controls how the global logger renders
type Options struct {
	Level  string
	Output io.Writer
	// JSON switches to one JSON object per line, for log shippers
	JSON bool
}

// Init initializes the logger with default settings
func Init() {
	Initialize("info")
}

// Initialize sets up the global logger with Charm's log library
func Initialize(logLevel string) {
	Configure(Options{Level: logLevel})
}

// InitializeWithWriter is Initialize with an explicit sink, used by tests to silence output
func InitializeWithWriter(w io.Writer, logLevel string) {
	Configure(Options{Level: logLevel, Output: w})
}

// Configure replaces the global logger
func Configure(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	Logger = log.NewWithOptions(out, log.Options{
		Level:           ParseLevel(opts.Level),
		ReportCaller:    true,
		ReportTimestamp: true,
	})
	if opts.JSON {
		Logger.SetFormatter(log.JSONFormatter)
	}

	Logger.Debug("Logger initialized", "level", Logger.GetLevel(), "json", opts.JSON)
}

// ParseLevel maps a LOG_LEVEL value to a level, defaulting to info
func ParseLevel(s string) log.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Get returns the global logger instance
func Get() *log.Logger {
	if Logger == nil {
		Initialize("info")
	}
	return Logger
}

// WithContext creates a new logger with additional context fields
func WithContext(fields ...any) *log.Logger {
	return Get().With(fields...)
}

// Service creates a logger for a specific service
func Service(serviceName string) *log.Logger {
	return WithContext("service", serviceName)
}

// Database creates a logger for database operations
func Database() *log.Logger {
	return WithContext("component", "database")
}

// HTTP creates a logger for HTTP operations
func HTTP() *log.Logger {
	return WithContext("component", "http")
}

// Migration creates a logger for migration operations
func Migration() *log.Logger {
	return WithContext("component", "migration")
}

// Ledger creates a logger for the vote ledger
func Ledger() *log.Logger {
	return WithContext("component", "ledger")
}

// Auth creates a logger for authentication and identity resolution
func Auth() *log.Logger {
	return WithContext("component", "auth")
}

// Repository creates a logger for repository operations
func Repository(repoName string) *log.Logger {
	return WithContext("component", "repository", "repository", repoName)
}

// Handler creates a logger for HTTP handlers
func Handler(handlerName string) *log.Logger {
	return WithContext("component", "handler", "handler", handlerName)
}
