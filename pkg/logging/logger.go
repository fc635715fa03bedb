// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer

	// Service is attached to every entry as "service" when set.
	Service string

	// Environment is attached to every entry as "env" when set.
	Environment string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// ForEnvironment returns the defaults for env: pretty debug output in
// development, JSON at info in production, and errors only under test.
func ForEnvironment(env string) Config {
	cfg := DefaultConfig()
	cfg.Environment = env

	switch env {
	case EnvDevelopment:
		cfg.Level = LevelDebug
		cfg.Pretty = true
	case EnvTest:
		cfg.Level = LevelError
	}
	return cfg
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	if cfg.Environment != "" {
		ctx = ctx.Str("env", cfg.Environment)
	}
	logger := ctx.Logger()

	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache writes (key, TTL)
//   - Raw upstream response sizes
//   - Retry backoff waits
//
// Info: Normal operation events
//   - Cache hit/miss per product page
//   - Pages fetched and cached
//   - One access log line per request
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts
//   - Cache read/write errors (treated as miss or swallowed)
//   - Token acquisition failures
//   - Degraded responses with empty data
//
// Error: Error conditions requiring attention
//   - Upstream requests failed after retries
//   - Malformed upstream payloads
//   - Token persistence failures (500 responses)
//   - Configuration errors
//
// Context Fields:
//   - component: emitting package (httpclient, involve, catalog, cache)
//   - page: requested product page
//   - key: cache key
//   - path: upstream path or request path
//   - status_code: HTTP status code
//   - duration: request or lookup duration
//   - error_class: error classification (client, server, network, decode)
//   - attempt: retry attempt number
//   - ttl: cache entry TTL
//   - request_id: inbound X-Request-ID
