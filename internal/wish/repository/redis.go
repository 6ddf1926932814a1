package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/trian/landing/backend/wishes-service/internal/wish"
)

// RedisRepo keeps the JSON document under a single Redis key (no TTL).
type RedisRepo struct {
	client *redis.Client
	key    string
}

// NewRedisRepo creates a Redis-based repository. Key may be empty.
func NewRedisRepo(client *redis.Client, key string) *RedisRepo {
	if key == "" {
		key = "wishes:document"
	}
	return &RedisRepo{client: client, key: key}
}

func (r *RedisRepo) Name() string { return "redis" }

func (r *RedisRepo) Load(ctx context.Context) ([]wish.Wish, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		// first access: store the empty document, SETNX so a concurrent writer wins
		empty, _ := Encode(nil)
		created, serr := r.client.SetNX(ctx, r.key, empty, 0).Result()
		if serr != nil {
			return nil, fmt.Errorf("redis init %s: %w", r.key, serr)
		}
		if created {
			return []wish.Wish{}, nil
		}
		// someone else created the key in between; use their document
		b, err = r.client.Get(ctx, r.key).Bytes()
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var out []wish.Wish
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse redis %s: %w", r.key, err)
	}
	if out == nil {
		out = []wish.Wish{}
	}
	return out, nil
}

func (r *RedisRepo) Save(ctx context.Context, wishes []wish.Wish) error {
	b, err := Encode(wishes)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
