// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the email gateway.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultRateLimit is the per-client request budget per 60-second window.
const defaultRateLimit = 30

// Config holds the complete application configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	API       APIConfig       `yaml:"api"`
	Provider  string          `yaml:"provider"`
	SES       SESConfig       `yaml:"ses"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Templates TemplatesConfig `yaml:"templates"`
	TLS       TLSConfig       `yaml:"tls"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds the HTTP server configuration.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// APIConfig holds the gateway's own API surface configuration: the shared
// secret callers must present, the per-client rate limit, and the sender
// address stamped on every outbound message.
type APIConfig struct {
	Key                string `yaml:"key"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	Sender             string `yaml:"sender"`
}

// SESConfig holds AWS SES v2 transport configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// SMTPConfig holds SMTP relay transport configuration.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TemplatesConfig holds the HTML template storage configuration.
type TemplatesConfig struct {
	Dir   string `yaml:"dir"`
	Cache bool   `yaml:"cache"`
}

// TLSConfig holds TLS settings for the HTTP listener.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, cfg.validate()
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, cfg.validate()
}

// SESConfigured returns true if the minimum SES settings are present.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != ""
}

// SMTPConfigured returns true if an SMTP relay host is set.
func (c *Config) SMTPConfigured() bool {
	return c.SMTP.Host != ""
}

// validate rejects configurations the gateway cannot start with.
func (c *Config) validate() error {
	if c.API.Key == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.API.Sender == "" {
		return fmt.Errorf("SENDER is required")
	}
	if c.API.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.API.RateLimitPerMinute)
	}
	return nil
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.HTTP.Listen = ":8080"
	c.API.RateLimitPerMinute = defaultRateLimit
	c.SMTP.Port = 587
	c.Templates.Dir = "./templates"
	c.Templates.Cache = true
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("HTTP_LISTEN"); v != "" {
		c.HTTP.Listen = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("SENDER"); v != "" {
		c.API.Sender = v
	}

	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}

	if v := os.Getenv("TEMPLATE_DIR"); v != "" {
		c.Templates.Dir = v
	}
	if v := os.Getenv("TEMPLATE_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Templates.Cache = b
		}
	}

	if v := os.Getenv("TLS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.TLS.Enabled = b
		}
	}
	if v := os.Getenv("TLS_CERT_FILE"); v != "" {
		c.TLS.CertFile = v
	}
	if v := os.Getenv("TLS_KEY_FILE"); v != "" {
		c.TLS.KeyFile = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
