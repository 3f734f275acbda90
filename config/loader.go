package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Load reads configuration from path (optional) and applies OMNI_* environment
// overrides on top. Missing file falls back to defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				// file exists but is unreadable/unparseable: hard error
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment env vars take precedence over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OMNI_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("OMNI_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("OMNI_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("OMNI_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("OMNI_DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("OMNI_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("OMNI_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("OMNI_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("OMNI_REDIS_KEY_PREFIX"); v != "" {
		cfg.Redis.KeyPrefix = v
	}
	if v := os.Getenv("OMNI_CACHE_CODEC"); v != "" {
		cfg.Cache.Codec = v
	}
	if v := os.Getenv("OMNI_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if v := os.Getenv("OMNI_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
