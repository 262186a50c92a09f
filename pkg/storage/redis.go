package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is the subset of go-redis a RedisStore needs. *redis.Client and
// *redis.ClusterClient satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps items in Redis so controls in several processes share them.
type RedisStore struct {
	client  RedisClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// RedisStoreOption configures RedisStore behavior.
type RedisStoreOption func(*redisStoreConfig)

type redisStoreConfig struct {
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// WithRedisPrefix sets the prefix prepended to every key.
// Default: "permalink:".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(c *redisStoreConfig) {
		c.prefix = prefix
	}
}

// WithRedisTTL expires items after d. Zero keeps them forever (the default).
func WithRedisTTL(d time.Duration) RedisStoreOption {
	return func(c *redisStoreConfig) {
		c.ttl = d
	}
}

// WithRedisTimeout bounds each Redis round trip. Default: DefaultTimeout.
func WithRedisTimeout(d time.Duration) RedisStoreOption {
	return func(c *redisStoreConfig) {
		c.timeout = d
	}
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(client RedisClient, opts ...RedisStoreOption) *RedisStore {
	cfg := &redisStoreConfig{
		prefix:  "permalink:",
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &RedisStore{
		client:  client,
		prefix:  cfg.prefix,
		ttl:     cfg.ttl,
		timeout: cfg.timeout,
	}
}

// DialRedis creates a client for addr and wraps it in a store.
func DialRedis(addr, password string, db int, opts ...RedisStoreOption) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  DefaultTimeout,
		WriteTimeout: DefaultTimeout,
	})
	return NewRedisStore(client, opts...)
}

// GetItem implements Storage.
func (r *RedisStore) GetItem(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

// SetItem implements Storage.
func (r *RedisStore) SetItem(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying client when it supports closing.
func (r *RedisStore) Close() error {
	if c, ok := r.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
