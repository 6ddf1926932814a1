package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/trian/landing/backend/wishes-service/internal/config"
	"github.com/trian/landing/backend/wishes-service/internal/database"
)

// Open returns the repository named by cfg.Store.Backend. rc is only used by
// the redis backend. The returned func releases the backend's connection.
func Open(ctx context.Context, cfg *config.Config, rc *redis.Client) (Repository, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case "memory":
		return NewMemoryRepo(), noop, nil
	case "redis":
		if rc == nil {
			return nil, noop, fmt.Errorf("redis backend needs a client")
		}
		return NewRedisRepo(rc, cfg.Redis.Key), noop, nil
	case "mongo":
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			return nil, noop, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection("wishes")
		return NewMongoRepo(col), func() { _ = client.Disconnect(context.Background()) }, nil
	case "file":
		repo, err := NewFileRepo(cfg.Store.DataFile)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil
	}
	return nil, noop, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

// NewRedisClient builds a client from cfg, or nil when no host is configured.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
