// Package config provides centralized configuration management for the
// service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Detect   DetectConfig
	Rate     RateLimitConfig
	Audit    AuditConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 3000).
	// LISTEN_PORT is honored as a legacy alias.
	Port int `env:"SERVER_PORT" envAlt:"LISTEN_PORT" default:"3000"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 15s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"15s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional detection audit store settings.
// The audit store is disabled when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// DetectConfig holds language detection settings.
type DetectConfig struct {
	// TablePath is the location of the generated code table (default: data/cld_codes.json)
	TablePath string `env:"DETECT_TABLE_PATH" default:"data/cld_codes.json"`

	// BodyLimit truncates incoming request bodies, in bytes (default: 1 MiB)
	BodyLimit int64 `env:"DETECT_BODY_LIMIT" default:"1048576"`

	// RebuildLimit caps uploaded source listings for table rebuilds,
	// in bytes (default: 4 MiB)
	RebuildLimit int64 `env:"DETECT_REBUILD_LIMIT" default:"4194304"`

	// StripPrefixes is a comma-separated list of word prefixes removed
	// from text before classification (default: "@,http")
	StripPrefixes []string `env:"DETECT_STRIP_PREFIXES" default:"@,http"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// AuditConfig holds detection audit log settings.
type AuditConfig struct {
	// BufferSize is the number of entries buffered before a forced flush (default: 100)
	BufferSize int `env:"AUDIT_BUFFER_SIZE" default:"100"`

	// FlushInterval is how often buffered entries are written (default: 5s)
	FlushInterval time.Duration `env:"AUDIT_FLUSH_INTERVAL" default:"5s"`

	// QueryLimit is the maximum entries returned per audit query (default: 100)
	QueryLimit int `env:"AUDIT_QUERY_LIMIT" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// AuditEnabled reports whether the detection audit store should run.
func (c *Config) AuditEnabled() bool {
	return c.Database.URL != ""
}
