package cli

import (
	"context"
	"fmt"
	"log/slog"

	"cookoff-scoreboard/internal/app"
	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/config"
	"cookoff-scoreboard/internal/infra/memory"
	"cookoff-scoreboard/internal/infra/postgres"
	redisstore "cookoff-scoreboard/internal/infra/redis"
	"cookoff-scoreboard/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// openStore connects the configured durable store. The returned func
// releases its connections.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (app.DurableStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory store, scores will not survive a restart")
		return memory.NewStore(), func() {}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite store opened", "path", cfg.SQLite.Path)
		return store, func() { store.Close() }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		ttl := config.TTLDuration(cfg.Redis.TTL, 0)
		logger.Info("redis store connected", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB, "ttl", ttl)
		return redisstore.NewStore(client, cfg.Redis.Prefix, ttl, app.ScoresKey), func() { client.Close() }, nil

	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		logger.Info("postgres store connected")
		return postgres.NewStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.Catalog.Path)
}

// openScoreboard is the shared bootstrap for every command that touches scores.
func openScoreboard(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *app.Metrics) (*app.Scoreboard, func(), error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	board := app.Open(ctx, cat, store, logger, metrics)
	return board, closeStore, nil
}
