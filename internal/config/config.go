// Package config loads the service configuration from a YAML file with
// environment overrides. A .env file in the working directory is honored for
// local development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Receipts ReceiptsConfig `yaml:"receipts"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Midtrans MidtransConfig `yaml:"midtrans"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds the store DSN (SQLite path or PostgreSQL URL).
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig holds token verification and admin login settings.
type AuthConfig struct {
	// IdentitySecret verifies tokens issued by the external identity provider.
	IdentitySecret string `yaml:"identity-secret"`
	// AdminSecret signs admin console tokens.
	AdminSecret string `yaml:"admin-secret"`
	// AdminTokenExpiry bounds admin session lifetime.
	AdminTokenExpiry time.Duration `yaml:"admin-token-expiry"`
}

// ReceiptsConfig holds receipt blob storage settings.
type ReceiptsConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base-url"`
}

// RedisConfig holds the optional dashboard cache settings. Empty Addr disables
// the cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig holds log output settings. An empty File logs to stdout only.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// MidtransConfig holds payment-provider credentials.
type MidtransConfig struct {
	ServerKey  string `yaml:"server-key"`
	Production bool   `yaml:"production"`
}

// Load reads the configuration file at path, applying defaults and environment
// overrides. A missing file is not an error; defaults and the environment win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{DSN: "volt.db"},
		Auth:     AuthConfig{AdminTokenExpiry: 12 * time.Hour},
		Receipts: ReceiptsConfig{Dir: "receipts", BaseURL: "/receipts"},
		Logging:  LoggingConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
	}

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		if errRead != nil {
			if !os.IsNotExist(errRead) {
				return nil, fmt.Errorf("config: read %s: %w", path, errRead)
			}
		} else if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Auth.AdminTokenExpiry <= 0 {
		cfg.Auth.AdminTokenExpiry = 12 * time.Hour
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override file values.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SERVER_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("IDENTITY_JWT_SECRET")); v != "" {
		cfg.Auth.IdentitySecret = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET")); v != "" {
		cfg.Auth.AdminSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("MIDTRANS_SERVER_KEY")); v != "" {
		cfg.Midtrans.ServerKey = v
	}
}
