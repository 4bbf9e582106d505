// internal/common/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"melodicamate/internal/common/database"
	"melodicamate/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "melodicamate"

// Cache stores JSON encoded values with a TTL. Implementations never make a
// request fail: callers treat an error as a miss.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *database.RedisClient
	name   string
}

// NewRedisCache returns a cache that labels its metrics with name.
func NewRedisCache(client *database.RedisClient, name string) *RedisCache {
	return &RedisCache{client: client, name: name}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.GetBytes(ctx, key)
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(c.name, "miss")
		return false, nil
	}
	if err != nil {
		metrics.RecordCacheLookup(c.name, "error")
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.RecordCacheLookup(c.name, "error")
		return false, err
	}
	metrics.RecordCacheLookup(c.name, "hit")
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl)
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }

func (Noop) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }

// Key builds a namespaced key from parts. Parts are hashed so arbitrary
// user text stays a fixed length.
func Key(namespace string, parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + ":" + namespace + ":" + hex.EncodeToString(h[:16])
}
