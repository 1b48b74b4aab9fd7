package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/cache"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/config"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/history"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/logging"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"import_max_file_size", cfg.Import.MaxFileSize,
		"history_enabled", cfg.Database.Enabled(),
		"cache_enabled", cfg.Cache.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	var deps web.Deps

	if cfg.Database.Enabled() {
		pool, err := connectDatabase(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store := history.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare import history schema", "error", err)
			os.Exit(1)
		}
		deps.History = store
	} else {
		slog.Info("import history disabled (DATABASE_URL not set)")
	}

	if cfg.Cache.Enabled() {
		client, results, err := connectCache(ctx, cfg.Cache)
		if err != nil {
			// The cache only saves work; run without it.
			slog.Warn("parse cache unavailable, continuing without it", "error", err)
		} else {
			defer client.Close()
			deps.Cache = results
			slog.Info("parse cache enabled", "ttl", cfg.Cache.TTL)
		}
	}

	server := web.NewServer(cfg, deps)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := server.Limiter().ActiveCount(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// connectDatabase opens and verifies the history connection pool.
func connectDatabase(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.MinConns = int32(dbCfg.MinConns)
	poolConfig.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbCfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(dbCfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// connectCache opens the Redis client and checks that the parse cache is
// reachable. REDIS_URL may be a redis:// URL or a bare host:port.
func connectCache(ctx context.Context, cacheCfg config.CacheConfig) (*redis.Client, *cache.ResultCache, error) {
	opts, err := redis.ParseURL(cacheCfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: cacheCfg.URL}
	}
	client := redis.NewClient(opts)
	results := cache.New(client, cacheCfg.Prefix, cacheCfg.TTL)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := results.Ping(pingCtx); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, results, nil
}
