package config

import (
	"context"
	"io"
	"time"

	"github.com/fcoo/permalink/internal/errors"
	"github.com/fcoo/permalink/pkg/storage"
)

// OpenStorage opens the configured backend and, when storage.broadcast.natsUrl
// is set, wraps it in a storage.BroadcastStore. The returned function releases
// everything that was opened.
func (c *Config) OpenStorage(opts ...storage.BroadcastOption) (storage.Storage, func() error, error) {
	timeout := c.StorageTimeout()

	var (
		store storage.Storage
		err   error
	)
	switch c.Storage.Backend {
	case "", "memory":
		store = storage.NewMemoryStore()

	case "redis":
		redisOpts := []storage.RedisStoreOption{
			storage.WithRedisPrefix(c.Storage.Redis.Prefix),
			storage.WithRedisTimeout(timeout),
		}
		if ttl := mustDuration(c.Storage.Redis.TTL, 0); ttl > 0 {
			redisOpts = append(redisOpts, storage.WithRedisTTL(ttl))
		}
		store = storage.DialRedis(c.Storage.Redis.Addr, c.Storage.Redis.Password, c.Storage.Redis.DB, redisOpts...)

	case "badger":
		store, err = storage.OpenBadger(c.Storage.Badger.Dir)
		if err != nil {
			return nil, nil, errors.New("E120").Wrap(err).
				WithSuggestion("Check that storage.badger.dir is writable and not used by another process")
		}

	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		client, err := storage.NewS3Client(ctx, c.Storage.S3.Region, c.Storage.S3.Endpoint)
		cancel()
		if err != nil {
			return nil, nil, errors.New("E120").Wrap(err).
				WithSuggestion("Check the AWS credentials and storage.s3.region")
		}
		store = storage.NewS3Store(client, c.Storage.S3.Bucket, c.Storage.S3.Prefix).WithTimeout(timeout)

	default:
		return nil, nil, errors.New("E104").WithDetail("storage.backend is " + quote(c.Storage.Backend))
	}

	closers := []func() error{closerOf(store)}

	if url := c.Storage.Broadcast.NATSURL; url != "" {
		if subject := c.Storage.Broadcast.Subject; subject != "" {
			opts = append([]storage.BroadcastOption{storage.WithBroadcastSubject(subject)}, opts...)
		}
		broadcast, nc, err := storage.ConnectNATS(url, store, opts...)
		if err != nil {
			closeAll(closers)
			return nil, nil, errors.New("E123").Wrap(err).
				WithSuggestion("Check storage.broadcast.natsUrl or remove it to run without broadcast")
		}
		store = broadcast
		// BroadcastStore.Close closes the wrapped store itself.
		closers = []func() error{broadcast.Close, func() error {
			return nc.Drain()
		}}
	}

	return store, func() error { return closeAll(closers) }, nil
}

// StorageTimeout returns storage.timeout as a duration.
func (c *Config) StorageTimeout() time.Duration {
	return mustDuration(c.Storage.Timeout, storage.DefaultTimeout)
}

func closerOf(store storage.Storage) func() error {
	if c, ok := store.(io.Closer); ok {
		return c.Close
	}
	return func() error { return nil }
}

func closeAll(closers []func() error) error {
	var first error
	for _, fn := range closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
