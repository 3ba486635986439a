// Package config loads server configuration from an optional file and
// ARBOR_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/arbor/pkg/session"
)

// EnvPrefix prefixes every environment variable, e.g. ARBOR_REDIS_URL.
const EnvPrefix = "ARBOR"

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	Address        string        `mapstructure:"address"`
	CacheBackend   string        `mapstructure:"cache_backend"`
	CacheDir       string        `mapstructure:"cache_dir"`
	RedisURL       string        `mapstructure:"redis_url"`
	KeyPrefix      string        `mapstructure:"key_prefix"`
	SessionBackend string        `mapstructure:"session_backend"`
	SessionDir     string        `mapstructure:"session_dir"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	MongoURI       string        `mapstructure:"mongo_uri"`
	MongoDatabase  string        `mapstructure:"mongo_database"`
	SeedCatalog    bool          `mapstructure:"seed_catalog"`
	CatalogFile    string        `mapstructure:"catalog_file"`
	LocalCORS      bool          `mapstructure:"local_cors"`
}

var defaults = map[string]any{
	"address":         ":8080",
	"cache_backend":   BackendMemory,
	"cache_dir":       "",
	"redis_url":       "",
	"key_prefix":      "arbor:",
	"session_backend": BackendMemory,
	"session_dir":     "",
	"session_ttl":     session.DefaultTTL,
	"mongo_uri":       "",
	"mongo_database":  "arbor",
	"seed_catalog":    false,
	"catalog_file":    "",
	"local_cors":      false,
}

// Setup reads cfgPath when it is not empty, overlays ARBOR_* environment
// variables and validates the result.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend names and the settings each backend needs.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendNone, BackendMemory, BackendFile:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("cache_backend %q requires redis_url", c.CacheBackend)
		}
	default:
		return fmt.Errorf("invalid cache_backend: %q (must be one of: none, memory, file, redis)", c.CacheBackend)
	}

	switch c.SessionBackend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("session_backend %q requires redis_url", c.SessionBackend)
		}
	default:
		return fmt.Errorf("invalid session_backend: %q (must be one of: memory, file, redis)", c.SessionBackend)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %v", c.SessionTTL)
	}
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.MongoURI != "" && c.CatalogFile != "" && !c.SeedCatalog {
		return fmt.Errorf("catalog_file and mongo_uri are exclusive unless seed_catalog is set")
	}
	return nil
}
