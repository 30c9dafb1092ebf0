package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb     *redis.Client
	menuTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, menuTTL time.Duration) (*Client, error) {
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

	return &Client{rdb: rdb, menuTTL: menuTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func menuKey(shop, category string) string {
	return fmt.Sprintf("menu:%s:%s", shop, category)
}

// GetMenu retrieves a cached menu query result. A cache miss is returned
// as (nil, false, nil).
func (c *Client) GetMenu(ctx context.Context, shop, category string) ([]models.MenuItem, bool, error) {
	raw, err := c.rdb.Get(ctx, menuKey(shop, category)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []models.MenuItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached menu: %w", err)
	}
	return items, true, nil
}

// SetMenu stores a menu query result with the configured TTL
func (c *Client) SetMenu(ctx context.Context, shop, category string, items []models.MenuItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode menu: %w", err)
	}
	return c.rdb.Set(ctx, menuKey(shop, category), raw, c.menuTTL).Err()
}

// InvalidateMenu removes all cached menu entries for a shop
func (c *Client) InvalidateMenu(ctx context.Context, shop string) error {
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("menu:%s:*", shop), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// SetIdempotencyKey stores a checkout idempotency marker with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// GetIdempotencyKey retrieves a previously stored idempotency marker.
// A missing key is returned as ("", false, nil).
func (c *Client) GetIdempotencyKey(ctx context.Context, key string) (string, bool, error) {
	result, err := c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return result, true, nil
}
