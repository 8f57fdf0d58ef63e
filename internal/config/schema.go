// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for clonehost.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	// Bind is the listen address for the HTTP gateway.
	Bind string `yaml:"bind"`

	// BaseURL is the public HTTPS origin under which Telegram can reach
	// this process. Per-tenant webhook URLs are derived from it.
	BaseURL string `yaml:"base_url"`

	// MasterToken is the Bot API token of the master bot that registers
	// and manages clone bots.
	MasterToken string `yaml:"master_token"`

	// LinkBase is the origin used when composing share links.
	// Defaults to "https://t.me".
	LinkBase string `yaml:"link_base"`

	// LogLevel is the minimum slog level: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	Database  DatabaseConfig  `yaml:"database"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Reporter  ReporterConfig  `yaml:"reporter"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`
}

// TelegramConfig holds Bot API client settings shared by all tenants.
type TelegramConfig struct {
	// APIURL is the Bot API origin. Defaults to "https://api.telegram.org".
	APIURL string `yaml:"api_url"`

	// Timeout bounds every outbound Bot API call.
	Timeout time.Duration `yaml:"timeout"`
}

// GatewayConfig holds HTTP server settings.
type GatewayConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ReporterConfig holds the scheduled stats reporter settings.
type ReporterConfig struct {
	// Schedule is a standard 5-field cron expression. Empty disables the reporter.
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	// OTLPEndpoint is the OTLP/HTTP collector endpoint. Empty disables tracing.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8080"
	}
	if c.LinkBase == "" {
		c.LinkBase = "https://t.me"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "clonehost.db"
	}
	if c.Database.WAL == nil {
		t := true
		c.Database.WAL = &t
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = 5000
	}
	if c.Telegram.APIURL == "" {
		c.Telegram.APIURL = "https://api.telegram.org"
	}
	if c.Telegram.Timeout <= 0 {
		c.Telegram.Timeout = 30 * time.Second
	}
	if c.Gateway.ReadTimeout <= 0 {
		c.Gateway.ReadTimeout = 10 * time.Second
	}
	if c.Gateway.WriteTimeout <= 0 {
		c.Gateway.WriteTimeout = 30 * time.Second
	}
	if c.Gateway.ShutdownTimeout <= 0 {
		c.Gateway.ShutdownTimeout = 5 * time.Second
	}
}
