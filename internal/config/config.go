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
	Port int `yaml:"port"` // webhook listener
}

type OpsConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL       string        `yaml:"url"`
	MaxConns  int           `yaml:"max_conns"`
	OpTimeout time.Duration `yaml:"op_timeout"` // bound on a single reconciliation attempt
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	DedupTTL time.Duration `yaml:"dedup_ttl"` // duplicate-delivery marker lifetime
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"` // calls per window per provider+ip
	Window time.Duration `yaml:"window"`
}

type RetryConfig struct {
	Interval   time.Duration `yaml:"interval"`    // how often to rescan
	StaleAfter time.Duration `yaml:"stale_after"` // age before an unprocessed event is retried
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ops       OpsConfig       `yaml:"ops"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// env override keeps deploys free of secrets-in-files
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 8081
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.OpTimeout <= 0 {
		cfg.Database.OpTimeout = 10 * time.Second
	}
	if cfg.Redis.DedupTTL <= 0 {
		cfg.Redis.DedupTTL = 24 * time.Hour
	}
	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 120
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Retry.Interval <= 0 {
		cfg.Retry.Interval = time.Minute
	}
	if cfg.Retry.StaleAfter <= 0 {
		cfg.Retry.StaleAfter = 10 * time.Minute
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
