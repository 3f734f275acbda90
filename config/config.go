// Package config loads the back-office core configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full configuration for the cache-aside core.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig configures the PostgreSQL backend.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Database     string        `mapstructure:"database"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxConns     int32         `mapstructure:"max_conns"`
	MinConns     int32         `mapstructure:"min_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// RedisConfig configures the cache cluster connection. Dial and command
// timeouts are independent; a slow command degrades to a cache miss while the
// connection stays up.
type RedisConfig struct {
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	KeyPrefix      string        `mapstructure:"key_prefix"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	PoolSize       int           `mapstructure:"pool_size"`
}

// CacheConfig tunes the cache-aside behavior.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Codec      string        `mapstructure:"codec"` // json | msgpack | cbor
	EntryTTL   time.Duration `mapstructure:"entry_ttl"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// LoggingConfig selects the log level for the process logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "omni",
			Database:     "omni",
			SSLMode:      "disable",
			MaxConns:     10,
			MinConns:     2,
			QueryTimeout: 5 * time.Second,
		},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			KeyPrefix:      "omni",
			DialTimeout:    2 * time.Second,
			CommandTimeout: 250 * time.Millisecond,
			PoolSize:       10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Codec:      "json",
			EntryTTL:   10 * time.Minute,
			SessionTTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate rejects configurations the composition root cannot wire.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Database == "" {
		return errors.New("config: database host and name are required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("config: invalid database port %d", c.Database.Port)
	}
	if c.Redis.Addr == "" {
		return errors.New("config: redis addr is required")
	}
	switch c.Cache.Codec {
	case "", "json", "msgpack", "cbor":
	default:
		return fmt.Errorf("config: unknown cache codec %q", c.Cache.Codec)
	}
	if c.Cache.EntryTTL < 0 || c.Cache.SessionTTL < 0 {
		return errors.New("config: cache TTLs must be non-negative")
	}
	return nil
}
