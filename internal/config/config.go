// Package config provides centralized configuration management for the registry service.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Registry  RegistryConfig
	Preflight PreflightConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s).
	// Preflight runs through HTTP are bounded by this as well.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the optional connection used to check raw tables.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Table checks are skipped when empty.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Schema holds the Bronze raw tables (default: bronze)
	Schema string `env:"BRONZE_SCHEMA" default:"bronze"`
}

// RegistryConfig selects where mappings come from.
type RegistryConfig struct {
	// Manifest is a YAML manifest path; the built-in catalog is used when empty.
	Manifest string `env:"REGISTRY_MANIFEST"`

	// BasePath overrides the manifest's base path when set.
	BasePath string `env:"REGISTRY_BASE_PATH"`
}

// PreflightConfig holds presence-check settings.
type PreflightConfig struct {
	// OnStartup runs one preflight at boot and logs the report (default: false)
	OnStartup bool `env:"PREFLIGHT_ON_STARTUP" default:"false"`

	CheckFiles  bool `env:"PREFLIGHT_CHECK_FILES" default:"true"`
	CheckTables bool `env:"PREFLIGHT_CHECK_TABLES" default:"true"`

	// MaxConcurrent bounds parallel checks (default: 4)
	MaxConcurrent int `env:"PREFLIGHT_MAX_CONCURRENT" default:"4"`

	// Timeout bounds a startup preflight run (default: 30s)
	Timeout time.Duration `env:"PREFLIGHT_TIMEOUT" default:"30s"`
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
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasDatabase reports whether a database URL is configured.
func (c *DatabaseConfig) HasDatabase() bool {
	return c.URL != ""
}
