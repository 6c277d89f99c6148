package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// RedisLevel is a Level backed by Redis, the optional alternative to
// DiskLevel named by config.CacheConfig's "redis" backend.
type RedisLevel struct {
	client redis.UniversalClient
	prefix string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisLevel dials addr and pings it eagerly so configuration
// mistakes surface at startup rather than on first use.
func NewRedisLevel(ctx context.Context, dsn, prefix string) (*RedisLevel, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis dsn: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &RedisLevel{client: client, prefix: prefix}, nil
}

func (r *RedisLevel) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *RedisLevel) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}
	r.hits.Add(1)
	return val, true, nil
}

func (r *RedisLevel) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

func (r *RedisLevel) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache: redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *RedisLevel) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.key("*"), 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache: redis clear: %w", err)
		}
	}
	return iter.Err()
}

func (r *RedisLevel) Stats() Stats {
	return Stats{Hits: int(r.hits.Load()), Misses: int(r.misses.Load())}
}

var _ Level = (*RedisLevel)(nil)
