package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/hashicorp/go-multierror"
	"github.com/robfig/cron/v3"
)

// Drivers lists the supported values of DB_DRIVER.
var Drivers = []string{"mysql", "postgres", "sqlite"}

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "pgx" || cfg.Database.Driver == "postgresql" {
		cfg.Database.Driver = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all configuration values are valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var result *multierror.Error

	// Database validation
	if !contains(Drivers, c.Database.Driver) {
		result = multierror.Append(result, fmt.Errorf("DB_DRIVER (%q) must be one of: %s",
			c.Database.Driver, strings.Join(Drivers, ", ")))
	}
	if c.Database.URL == "" && c.Database.Name == "" {
		result = multierror.Append(result, fmt.Errorf("DB_NAME is required when DATABASE_URL is not set"))
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("DB_PORT (%d) must be 0-65535", c.Database.Port))
	}
	if c.Database.MaxConns <= 0 {
		result = multierror.Append(result, fmt.Errorf("DB_MAX_CONNS must be positive"))
	}
	if c.Database.MinConns < 0 {
		result = multierror.Append(result, fmt.Errorf("DB_MIN_CONNS must be non-negative"))
	}
	if c.Database.MaxConns < c.Database.MinConns {
		result = multierror.Append(result, fmt.Errorf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.ConnectTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("DB_CONNECT_TIMEOUT must be positive"))
	}

	// Import validation
	if c.Import.BatchSize < 1 {
		result = multierror.Append(result, fmt.Errorf("IMPORT_BATCH_SIZE (%d) must be >= 1", c.Import.BatchSize))
	}
	if c.Import.MaxRetries < 0 {
		result = multierror.Append(result, fmt.Errorf("IMPORT_MAX_RETRIES (%d) must be >= 0", c.Import.MaxRetries))
	}
	if c.Import.RetryUnit < 0 {
		result = multierror.Append(result, fmt.Errorf("IMPORT_RETRY_UNIT must be non-negative"))
	}
	if c.Import.RunWait < 0 {
		result = multierror.Append(result, fmt.Errorf("IMPORT_RUN_WAIT must be non-negative"))
	}
	if c.Import.FallbackTextLength < 1 {
		result = multierror.Append(result, fmt.Errorf("IMPORT_FALLBACK_TEXT_LENGTH must be positive"))
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive"))
	}

	// Schedule validation
	if c.Schedule.RunOnStart && c.Schedule.Cron == "" {
		result = multierror.Append(result, fmt.Errorf("IMPORT_SCHEDULE_RUN_ON_START requires IMPORT_SCHEDULE"))
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			result = multierror.Append(result, fmt.Errorf("IMPORT_SCHEDULE (%q) is not a valid cron expression: %v",
				c.Schedule.Cron, err))
		}
	}

	// Logging validation
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(c.Logging.Level)) {
		result = multierror.Append(result, fmt.Errorf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := []string{"text", "json"}
	if !contains(validFormats, strings.ToLower(c.Logging.Format)) {
		result = multierror.Append(result, fmt.Errorf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	return result.ErrorOrNil()
}

// String returns a safe string representation of the config for logging.
// The database password and URL are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	url := ""
	if c.Database.URL != "" {
		url = "[MASKED]"
	}
	b.WriteString(fmt.Sprintf("Database: {Driver: %q, URL: %q, Host: %q, Port: %d, User: %q, Password: [MASKED], Name: %q}, ",
		c.Database.Driver, url, c.Database.Host, c.Database.DefaultPort(), c.Database.User, c.Database.Name))
	b.WriteString(fmt.Sprintf("Import: {BatchSize: %d, MaxRetries: %d, DataDir: %q, CreateTables: %v}, ",
		c.Import.BatchSize, c.Import.MaxRetries, c.Import.DataDir, c.Import.CreateTables))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q, File: %q}",
		c.Logging.Level, c.Logging.Format, c.Logging.File))
	b.WriteString("}")
	return b.String()
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
