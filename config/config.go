// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// BaseURL is the public URL used in email links.
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// AuthConfig configures tokens and password hashing.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret,omitempty"`
	TokenLifetime time.Duration `yaml:"token_lifetime"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
}

// EmailConfig configures outgoing email.
// Use "none" to disable sending or "smtp" for a real server.
type EmailConfig struct {
	Mode     string `yaml:"mode"` // "none" or "smtp"
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from,omitempty"`
	FromName string `yaml:"from_name,omitempty"`
	UseTLS   bool   `yaml:"use_tls,omitempty"` // implicit TLS instead of STARTTLS
}

// StorageConfig configures the object store for covers and book files.
// Use "memory" for development or "s3" for S3-compatible storage.
type StorageConfig struct {
	Mode          string `yaml:"mode"` // "memory" or "s3"
	Region        string `yaml:"region,omitempty"`
	Bucket        string `yaml:"bucket,omitempty"`
	AccessKey     string `yaml:"access_key,omitempty"`
	SecretKey     string `yaml:"secret_key,omitempty"`
	Endpoint      string `yaml:"endpoint,omitempty"` // custom endpoint for MinIO etc.
	PublicBaseURL string `yaml:"public_base_url,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	OPENSHELF_DATABASE_DSN     - Database path (default: openshelf.db)
//	OPENSHELF_SERVER_HOST      - Server host (default: 0.0.0.0)
//	OPENSHELF_SERVER_PORT      - Server port (default: 8080)
//	OPENSHELF_SERVER_BASE_URL  - Public URL used in email links
//	OPENSHELF_JWT_SECRET       - Token signing secret
//	OPENSHELF_EMAIL_MODE       - Email mode: none or smtp (default: none)
//	OPENSHELF_STORAGE_MODE     - Storage mode: memory or s3 (default: memory)
//	OPENSHELF_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	OPENSHELF_LOG_FORMAT       - Log format: json or console (default: json)
//	OPENSHELF_METRICS_ENABLED  - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// HasEnvConfig reports whether any OPENSHELF_* configuration is set in
// the environment. Used to decide whether env-only startup makes sense.
func HasEnvConfig() bool {
	keys := []string{
		"OPENSHELF_DATABASE_DSN",
		"OPENSHELF_SERVER_PORT",
		"OPENSHELF_JWT_SECRET",
		"OPENSHELF_EMAIL_MODE",
		"OPENSHELF_STORAGE_MODE",
	}
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// LoadWithFallback tries to load from file, falls back to environment
// variables. This is the recommended method for Docker deployments.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies OPENSHELF_* environment variables to the
// config. Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("OPENSHELF_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("OPENSHELF_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("OPENSHELF_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("OPENSHELF_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("OPENSHELF_SERVER_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}

	// Database configuration
	if v := os.Getenv("OPENSHELF_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("OPENSHELF_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Auth configuration
	if v := os.Getenv("OPENSHELF_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("OPENSHELF_TOKEN_LIFETIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenLifetime = d
		}
	}
	if v := os.Getenv("OPENSHELF_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.BcryptCost = n
		}
	}

	// Email configuration
	if v := os.Getenv("OPENSHELF_EMAIL_MODE"); v != "" {
		cfg.Email.Mode = v
	}
	if v := os.Getenv("OPENSHELF_SMTP_HOST"); v != "" {
		cfg.Email.Host = v
	}
	if v := os.Getenv("OPENSHELF_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Email.Port = n
		}
	}
	if v := os.Getenv("OPENSHELF_SMTP_USERNAME"); v != "" {
		cfg.Email.Username = v
	}
	if v := os.Getenv("OPENSHELF_SMTP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("OPENSHELF_SMTP_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("OPENSHELF_SMTP_USE_TLS"); v != "" {
		cfg.Email.UseTLS = parseBool(v)
	}

	// Storage configuration
	if v := os.Getenv("OPENSHELF_STORAGE_MODE"); v != "" {
		cfg.Storage.Mode = v
	}
	if v := os.Getenv("OPENSHELF_S3_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("OPENSHELF_S3_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("OPENSHELF_S3_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("OPENSHELF_S3_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("OPENSHELF_S3_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("OPENSHELF_S3_PUBLIC_BASE_URL"); v != "" {
		cfg.Storage.PublicBaseURL = v
	}

	// Logging configuration
	if v := os.Getenv("OPENSHELF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OPENSHELF_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("OPENSHELF_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("OPENSHELF_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "openshelf.db"
	}

	if cfg.Auth.TokenLifetime == 0 {
		cfg.Auth.TokenLifetime = 24 * time.Hour
	}

	if cfg.Email.Mode == "" {
		cfg.Email.Mode = "none"
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = 587
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "OpenShelf"
	}

	if cfg.Storage.Mode == "" {
		cfg.Storage.Mode = "memory"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	validEmailModes := map[string]bool{"none": true, "smtp": true}
	if !validEmailModes[cfg.Email.Mode] {
		return fmt.Errorf("email.mode must be 'none' or 'smtp', got %q", cfg.Email.Mode)
	}
	if cfg.Email.Mode == "smtp" {
		if cfg.Email.Host == "" {
			return fmt.Errorf("email.host is required when email.mode is 'smtp'")
		}
		if cfg.Email.From == "" {
			return fmt.Errorf("email.from is required when email.mode is 'smtp'")
		}
	}

	validStorageModes := map[string]bool{"memory": true, "s3": true}
	if !validStorageModes[cfg.Storage.Mode] {
		return fmt.Errorf("storage.mode must be 'memory' or 's3', got %q", cfg.Storage.Mode)
	}
	if cfg.Storage.Mode == "s3" && cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage.mode is 's3'")
	}

	return nil
}
