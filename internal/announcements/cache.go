package announcements

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps per-user unread counts in Redis. Invalidation is by store
// version: any write to a store's announcements or read receipts bumps the
// version, orphaning every cached count for that store. Orphans expire via
// TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs the unread-count cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) versionKey(storeID int64) string {
	return fmt.Sprintf("shelfwise:ann:ver:%d", storeID)
}

func (c *Cache) countKey(storeID, version, userID int64) string {
	return fmt.Sprintf("shelfwise:ann:unread:%d:%d:%d", storeID, version, userID)
}

func (c *Cache) version(ctx context.Context, storeID int64) (int64, error) {
	val, err := c.client.Get(ctx, c.versionKey(storeID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// GetUnread returns the cached count; ok is false on miss.
func (c *Cache) GetUnread(ctx context.Context, storeID, userID int64) (int64, bool, error) {
	if c == nil || c.client == nil {
		return 0, false, nil
	}
	version, err := c.version(ctx, storeID)
	if err != nil {
		return 0, false, err
	}
	val, err := c.client.Get(ctx, c.countKey(storeID, version, userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return count, true, nil
}

// SetUnread stores a freshly computed count under the current version.
func (c *Cache) SetUnread(ctx context.Context, storeID, userID, count int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	version, err := c.version(ctx, storeID)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.countKey(storeID, version, userID), count, c.ttl).Err()
}

// Invalidate bumps the store version so all cached counts go stale at once.
func (c *Cache) Invalidate(ctx context.Context, storeID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, c.versionKey(storeID)).Err()
}
