// Package redis provides a Redis-backed implementation of remote.Cache so
// that retrieved schema documents can be shared between processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config contains configuration options for the Redis cache.
type Config struct {
	// Client is the Redis client instance.
	Client *redis.Client

	// KeyPrefix is the prefix for all Redis keys.
	// Default: "schemavalidator:remote:"
	KeyPrefix string

	// TTL is the expiry of cached documents. Zero keeps them until evicted.
	TTL time.Duration
}

// Cache implements remote.Cache on top of Redis.
type Cache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// New creates a Redis-backed cache.
func New(config Config) (*Cache, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "schemavalidator:remote:"
	}
	return &Cache{
		client:    config.Client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

// Dial connects to addr and returns a Cache using it.
func Dial(addr, keyPrefix string, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	return New(Config{
		Client:    redis.NewClient(&redis.Options{Addr: addr}),
		KeyPrefix: keyPrefix,
		TTL:       ttl,
	})
}

func (c *Cache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	doc, err := c.client.Get(ctx, c.key(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", url, err)
	}
	return doc, true, nil
}

func (c *Cache) Set(ctx context.Context, url string, doc []byte) error {
	if err := c.client.Set(ctx, c.key(url), doc, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", url, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error { return c.client.Close() }

func (c *Cache) key(url string) string { return c.keyPrefix + url }
