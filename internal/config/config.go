// Package config provides YAML-based configuration loading for Semaphore.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Semaphore configuration, loaded from semaphore.yaml.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logs     LogsConfig     `yaml:"logs"`
	Clients  []ClientConfig `yaml:"clients"`
}

// TelegramConfig holds the application-level MTProto credentials shared by
// all clients, plus connection settings.
type TelegramConfig struct {
	APIID       int    `yaml:"api_id"`
	APIHash     string `yaml:"api_hash"`
	SessionsDir string `yaml:"sessions_dir"`
	// SOCKS5 proxy address ("host:port"), empty for a direct connection.
	Proxy string `yaml:"proxy"`
}

// DatabaseConfig selects the backing store. Path takes precedence (SQLite);
// otherwise Host/Port/Database describe a MySQL-compatible server.
type DatabaseConfig struct {
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// APIConfig holds settings for the REST API server.
type APIConfig struct {
	Port int `yaml:"port"`
}

// LogsConfig controls message-log retention.
type LogsConfig struct {
	RetentionDays int    `yaml:"retention_days"`
	CleanupCron   string `yaml:"cleanup_cron"`
}

// ClientConfig describes one Telegram identity to run at startup.
type ClientConfig struct {
	ID    string `yaml:"id"`
	Kind  string `yaml:"kind"` // "user" or "bot"
	Phone string `yaml:"phone"`
	Token string `yaml:"token"`
	// Per-client API credentials override the global telegram section.
	APIID   int    `yaml:"api_id"`
	APIHash string `yaml:"api_hash"`
	AdminID int64  `yaml:"admin_id"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Telegram.SessionsDir == "" {
		c.Telegram.SessionsDir = "sessions"
	}
	if c.Database.Path == "" && c.Database.Host == "" {
		c.Database.Path = "semaphore.db"
	}
	if c.Database.Host != "" && c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Host != "" && c.Database.Database == "" {
		c.Database.Database = "semaphore"
	}
	if c.API.Port == 0 {
		c.API.Port = 9000
	}
	if c.Logs.RetentionDays == 0 {
		c.Logs.RetentionDays = 30
	}
	if c.Logs.CleanupCron == "" {
		c.Logs.CleanupCron = "0 2 * * *"
	}
	for i := range c.Clients {
		if c.Clients[i].Kind == "" {
			c.Clients[i].Kind = "user"
		}
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Telegram.APIID == 0 {
		errs = append(errs, "telegram.api_id is required")
	}
	if c.Telegram.APIHash == "" {
		errs = append(errs, "telegram.api_hash is required")
	}
	seen := make(map[string]bool)
	for i, cl := range c.Clients {
		if cl.ID == "" {
			errs = append(errs, fmt.Sprintf("clients[%d].id is required", i))
			continue
		}
		if seen[cl.ID] {
			errs = append(errs, fmt.Sprintf("clients[%d].id %q is duplicated", i, cl.ID))
		}
		seen[cl.ID] = true
		switch cl.Kind {
		case "user":
			if cl.Phone == "" {
				errs = append(errs, fmt.Sprintf("clients[%d].phone is required for user clients", i))
			}
		case "bot":
			if cl.Token == "" {
				errs = append(errs, fmt.Sprintf("clients[%d].token is required for bot clients", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("clients[%d].kind must be \"user\" or \"bot\"", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
