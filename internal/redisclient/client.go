package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	productListKeyPrefix = "products:v:"
	cacheVersionKey      = "products:version"
)

// Client caches the rendered product list in Redis behind a version key.
// Catalog mutations bump the version, which orphans the old entries and
// lets them expire by TTL instead of being deleted one by one.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) version(ctx context.Context) (int64, error) {
	version, err := c.rdb.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		return 1, nil
	}
	return version, err
}

// GetProductList retrieves the cached product list for the current version
func (c *Client) GetProductList(ctx context.Context) ([]byte, bool) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, fmt.Sprintf("%s%d", productListKeyPrefix, version)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetProductList caches the product list under the current version
func (c *Client) SetProductList(ctx context.Context, data []byte) error {
	version, err := c.version(ctx)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf("%s%d", productListKeyPrefix, version), data, c.ttl).Err()
}

// Invalidate bumps the cache version so stale lists stop being served
func (c *Client) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, cacheVersionKey).Err()
}
