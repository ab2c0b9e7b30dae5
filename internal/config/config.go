// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	Import   ImportConfig
	Logging  LoggingConfig
	Server   ServerConfig
	Schedule ScheduleConfig
}

// DatabaseConfig holds target store connection settings.
type DatabaseConfig struct {
	// Driver selects the target store: mysql, postgres or sqlite (default: mysql)
	Driver string `env:"DB_DRIVER" envDefault:"mysql"`

	// URL is a full connection string. When set it takes precedence over
	// the individual fields below.
	URL string `env:"DATABASE_URL"`

	// Host is the database server host (default: localhost)
	Host string `env:"DB_HOST" envDefault:"localhost"`

	// Port is the database server port; 0 selects the driver default
	Port int `env:"DB_PORT" envDefault:"0"`

	// User is the database user (default: root)
	User string `env:"DB_USER" envDefault:"root"`

	// Password is the database password
	Password string `env:"DB_PASSWORD"`

	// Name is the database name, or the database file path for sqlite
	Name string `env:"DB_NAME" envDefault:"crm"`

	// Charset is the connection character encoding (default: utf8mb4)
	Charset string `env:"DB_CHARSET" envDefault:"utf8mb4"`

	// MaxConns is the maximum number of open connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"4"`

	// MinConns is the minimum number of idle connections to keep (default: 1)
	MinConns int `env:"DB_MIN_CONNS" envDefault:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`

	// ConnectTimeout bounds a single connection attempt (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ImportConfig holds batch import settings.
type ImportConfig struct {
	// BatchSize is the number of records committed per transaction (default: 1000)
	BatchSize int `env:"IMPORT_BATCH_SIZE" envDefault:"1000"`

	// MaxRetries is the number of connection attempts before giving up (default: 3)
	MaxRetries int `env:"IMPORT_MAX_RETRIES" envDefault:"3"`

	// RetryUnit is the base backoff unit; waits are 1, 2, 4... units (default: 1s)
	RetryUnit time.Duration `env:"IMPORT_RETRY_UNIT" envDefault:"1s"`

	// DataDir is the directory holding source spreadsheets (default: ./data)
	DataDir string `env:"IMPORT_DATA_DIR" envDefault:"./data"`

	// CatalogFile optionally replaces the built-in entity catalogue with a YAML file
	CatalogFile string `env:"IMPORT_CATALOG"`

	// ReportDir receives the per-run stats JSON; empty disables the report (default: .)
	ReportDir string `env:"IMPORT_REPORT_DIR" envDefault:"."`

	// CreateTables provisions missing target tables before importing (default: true)
	CreateTables bool `env:"IMPORT_CREATE_TABLES" envDefault:"true"`

	// FallbackTextLength is the truncation length used when a schema lookup
	// yields nothing (default: 20)
	FallbackTextLength int `env:"IMPORT_FALLBACK_TEXT_LENGTH" envDefault:"20"`

	// RunWait is how long an import waits for an active run to finish
	// before giving up with RUN001 (default: 5s)
	RunWait time.Duration `env:"IMPORT_RUN_WAIT" envDefault:"5s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`

	// File additionally writes logs to a rotating file when set
	File string `env:"LOG_FILE"`

	// MaxSizeMB is the size at which the log file is rotated (default: 100)
	MaxSizeMB int `env:"LOG_MAX_SIZE_MB" envDefault:"100"`

	// MaxBackups is the number of rotated files to keep (default: 5)
	MaxBackups int `env:"LOG_MAX_BACKUPS" envDefault:"5"`

	// MaxAgeDays is the number of days to keep rotated files (default: 30)
	MaxAgeDays int `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`

	// Compress gzips rotated files (default: false)
	Compress bool `env:"LOG_COMPRESS" envDefault:"false"`
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envDefault:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`
}

// ScheduleConfig holds settings for cron-driven imports in serve mode.
type ScheduleConfig struct {
	// Cron is a standard 5-field cron expression; empty disables scheduling
	Cron string `env:"IMPORT_SCHEDULE"`

	// Group restricts scheduled runs to one entity group; empty runs all groups
	Group string `env:"IMPORT_SCHEDULE_GROUP"`

	// RunOnStart triggers one run as soon as serve mode starts (default: false)
	RunOnStart bool `env:"IMPORT_SCHEDULE_RUN_ON_START" envDefault:"false"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DefaultPort returns the conventional port for the configured driver.
func (c *DatabaseConfig) DefaultPort() int {
	if c.Port > 0 {
		return c.Port
	}
	switch c.Driver {
	case "postgres":
		return 5432
	case "mysql":
		return 3306
	}
	return 0
}
