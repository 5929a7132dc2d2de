package storage

import (
	"context"
	"fmt"

	"github.com/cleared-dev/tally/internal/config"
)

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file backend: no path configured")
		}
		return OpenFileStore(cfg.Path)
	case config.BackendRedis:
		return NewRedisStore(RedisConfig{
			Addr:      cfg.Redis.Addr,
			Username:  cfg.Redis.Username,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	case config.BackendPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("postgres backend: no dsn configured")
		}
		return NewPostgresStore(ctx, cfg.Postgres.DSN, cfg.Postgres.Table)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
