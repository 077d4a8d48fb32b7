// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"` // webhook + metrics listener
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"` // bearer token for the admin/affiliate API
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"` // per-user withdrawal lock TTL
}

type LedgerConfig struct {
	MinimumWithdrawal float64 `yaml:"minimum_withdrawal"` // payout floor, major units
	Currency          string  `yaml:"currency"`           // default for charges missing one
}

type NotifierConfig struct {
	Endpoint string        `yaml:"endpoint"` // email relay URL; empty selects the noop sender
	APIKey   string        `yaml:"api_key"`
	From     string        `yaml:"from"`
	Interval time.Duration `yaml:"interval"` // outbox dispatch interval
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Notifier NotifierConfig `yaml:"notifier"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the YAML config. The gateway keys and the
// commission rate are deliberately absent here: they live in the settings
// store (with env fallback) so operators can rotate them without a deploy.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 10 * time.Second
	}
	if cfg.Ledger.MinimumWithdrawal <= 0 {
		cfg.Ledger.MinimumWithdrawal = 1000
	}
	if cfg.Ledger.Currency == "" {
		cfg.Ledger.Currency = "KES"
	}
	if cfg.Notifier.Interval <= 0 {
		cfg.Notifier.Interval = time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
