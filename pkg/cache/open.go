package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a Store backend.
type Options struct {
	// Backend is BackendFile (default) or BackendRedis
	Backend string

	// Dir is the file store directory (default: DefaultDir())
	Dir string

	// RedisAddr is the host:port of the Redis server
	RedisAddr string

	// RedisDB is the Redis logical database
	RedisDB int
}

// Open builds the configured store. The returned close function releases
// backend resources and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case "", BackendFile:
		store, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, noop, fmt.Errorf("redis address is required for the %q backend", BackendRedis)
		}
		client := redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
			DB:   opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("connect to redis at %s: %w", opts.RedisAddr, err)
		}
		return NewRedisStore(client), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
