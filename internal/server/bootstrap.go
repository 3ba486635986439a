package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/arbor/internal/config"
	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/pipeline"
	"github.com/matzehuels/arbor/pkg/session"
	"github.com/matzehuels/arbor/pkg/species"
)

// closers releases backends in reverse order of acquisition.
type closers []func() error

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open wires the backends named in cfg into a Server. The returned func
// releases every connection Open made; call it after the server stops.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Server, func() error, error) {
	if logger == nil {
		logger = log.Default()
	}
	var cl closers
	fail := func(err error) (*Server, func() error, error) {
		_ = cl.close()
		return nil, nil, err
	}

	var rdb *redis.Client
	if cfg.CacheBackend == config.BackendRedis || cfg.SessionBackend == config.BackendRedis {
		var err error
		if rdb, err = connectRedis(ctx, cfg.RedisURL); err != nil {
			return fail(err)
		}
		cl = append(cl, rdb.Close)
	}

	c, err := openCache(cfg, rdb)
	if err != nil {
		return fail(err)
	}
	cl = append(cl, c.Close)

	catalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	if mc, ok := catalog.(*species.MongoCatalog); ok {
		cl = append(cl, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return mc.Close(closeCtx)
		})
	}

	store, err := openStore(cfg, rdb)
	if err != nil {
		return fail(err)
	}

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.KeyPrefix)
	runner := pipeline.NewRunner(c, keyer, catalog, logger)
	sessions := session.NewManager(store, catalog, runner, logger, cfg.SessionTTL)

	logger.Info("backends ready",
		"cache", cfg.CacheBackend,
		"sessions", cfg.SessionBackend,
		"catalog", catalogSource(cfg))

	srv := New(runner, sessions, logger, Options{LocalCORS: cfg.LocalCORS})
	return srv, cl.close, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func openCache(cfg *config.Config, rdb *redis.Client) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendFile:
		dir := cfg.CacheDir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, fmt.Errorf("cache dir: %w", err)
			}
		}
		return cache.NewFileCache(dir)
	case config.BackendRedis:
		return cache.NewRedisCacheFromClient(rdb), nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

func openStore(cfg *config.Config, rdb *redis.Client) (session.Store, error) {
	switch cfg.SessionBackend {
	case config.BackendFile:
		return session.NewFileStore(cfg.SessionDir)
	case config.BackendRedis:
		return session.NewRedisStoreFromClient(rdb, cfg.KeyPrefix+"session:"), nil
	default:
		return session.NewMemoryStore(), nil
	}
}

// openCatalog picks Mongo when a URI is configured, else the TOML file, else
// the embedded catalogue. With seed_catalog set, the TOML source is upserted
// into Mongo first.
func openCatalog(ctx context.Context, cfg *config.Config, logger *log.Logger) (species.Catalog, error) {
	var file species.Catalog = species.Default()
	if cfg.CatalogFile != "" {
		tc, err := species.LoadTOMLFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		file = tc
	}
	if cfg.MongoURI == "" {
		return file, nil
	}

	mc, err := species.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if cfg.SeedCatalog {
		n, err := mc.Seed(ctx, file)
		if err != nil {
			_ = mc.Close(ctx)
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		logger.Info("seeded species catalog", "species", n, "database", cfg.MongoDatabase)
	}
	return mc, nil
}

func catalogSource(cfg *config.Config) string {
	switch {
	case cfg.MongoURI != "":
		return "mongo"
	case cfg.CatalogFile != "":
		return cfg.CatalogFile
	default:
		return "embedded"
	}
}
