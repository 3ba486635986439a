package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/arbor/pkg/session"
)

func TestSetupDefaults(t *testing.T) {
	cfg, err := Setup("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address != ":8080" || cfg.CacheBackend != BackendMemory || cfg.SessionBackend != BackendMemory {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.SessionTTL != session.DefaultTTL {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.MongoDatabase != "arbor" || cfg.KeyPrefix != "arbor:" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	body := strings.Join([]string{
		`address: ":7000"`,
		`cache_backend: redis`,
		`redis_url: redis://localhost:6379/0`,
		`session_backend: redis`,
		`session_ttl: 2h`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Setup(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address != ":7000" || cfg.CacheBackend != BackendRedis || cfg.SessionTTL != 2*time.Hour {
		t.Errorf("file config = %+v", cfg)
	}
}

func TestSetupEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	if err := os.WriteFile(path, []byte(`address: ":7000"`), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARBOR_ADDRESS", ":9000")
	t.Setenv("ARBOR_SESSION_BACKEND", "file")

	cfg, err := Setup(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address != ":9000" || cfg.SessionBackend != BackendFile {
		t.Errorf("env overlay = %+v", cfg)
	}
}

func TestSetupMissingFile(t *testing.T) {
	if _, err := Setup(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Address: ":8080", CacheBackend: BackendMemory, SessionBackend: BackendMemory, SessionTTL: time.Hour}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"cache none", func(c *Config) { c.CacheBackend = BackendNone }, false},
		{"bad cache", func(c *Config) { c.CacheBackend = "memcached" }, true},
		{"redis cache without url", func(c *Config) { c.CacheBackend = BackendRedis }, true},
		{"redis sessions with url", func(c *Config) { c.SessionBackend = BackendRedis; c.RedisURL = "redis://x" }, false},
		{"sessions none", func(c *Config) { c.SessionBackend = BackendNone }, true},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, true},
		{"empty address", func(c *Config) { c.Address = "" }, true},
		{"catalog and mongo", func(c *Config) { c.MongoURI = "mongodb://x"; c.CatalogFile = "c.toml" }, true},
		{"seeding mongo", func(c *Config) { c.MongoURI = "mongodb://x"; c.CatalogFile = "c.toml"; c.SeedCatalog = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
