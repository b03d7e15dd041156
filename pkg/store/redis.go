package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jmylchreest/slotwatch/internal/logger"
)

// RedisConfig configures a Redis store.
type RedisConfig struct {
	Addr    string
	DB      int
	Prefix  string        // prepended to every key (default "slotwatch:")
	Timeout time.Duration // per-call timeout (default 2s)
	Client  *redis.Client // use an existing client instead of dialing Addr
}

// Redis stores values as plain string keys, so several machines can share
// one set of booking details.
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedis connects and pings the server.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "slotwatch:"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	client := cfg.Client
	if client == nil {
		addr := cfg.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		client = redis.NewClient(&redis.Options{Addr: addr, DB: cfg.DB})
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return &Redis{client: client, prefix: cfg.Prefix, timeout: cfg.Timeout}, nil
}

// Get returns the value for key or def. Connection errors are logged.
func (r *Redis) Get(key, def string) string {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return def
	}
	if err != nil {
		logger.Warn("redis read failed, using default", "key", key, "error", err)
		return def
	}
	return v
}

// Set stores value without expiry.
func (r *Redis) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis write failed: %w", err)
	}
	return nil
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
