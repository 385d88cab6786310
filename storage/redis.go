package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces every document key in the shared keyspace.
const redisKeyPrefix = "ferrochat:"

// RedisStore persists documents as plain Redis string values.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis. dsn is either a redis:// URL or a bare
// host:port address.
func NewRedisStore(dsn string) (*RedisStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "localhost:6379"
	}
	var opts *redis.Options
	if strings.Contains(dsn, "://") {
		parsed, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: dsn}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis store: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Get returns the document stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return v, nil
}

// Put stores value under key without expiry.
func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("save document %q: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under key.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection pool.
func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
