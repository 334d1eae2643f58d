package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps resolved tenants close to the request path so that tenant
// resolution does not hit the primary store on every request. Misses are
// not errors; Get reports them via the bool.
type Cache interface {
	Get(ctx context.Context, key string) (Tenant, bool)
	Set(ctx context.Context, key string, t Tenant) error
	Delete(ctx context.Context, key string) error
}

// NoOpCache disables caching. Useful in tests and single-node setups.
type NoOpCache struct{}

func (NoOpCache) Get(ctx context.Context, key string) (Tenant, bool)  { return Tenant{}, false }
func (NoOpCache) Set(ctx context.Context, key string, t Tenant) error { return nil }
func (NoOpCache) Delete(ctx context.Context, key string) error        { return nil }

// DefaultCacheTTL bounds staleness after out-of-band tenant updates.
const DefaultCacheTTL = 5 * time.Minute

// RedisCache caches tenants in Redis as JSON under a shared key prefix.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache builds a Redis-backed tenant cache. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "tenant:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Tenant, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		// redis.Nil is a miss; any other failure degrades to a miss too,
		// the store remains the source of truth.
		return Tenant{}, false
	}
	var t Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tenant{}, false
	}
	return t, true
}

func (c *RedisCache) Set(ctx context.Context, key string, t Tenant) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tenant: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache tenant: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("evict tenant: %w", err)
	}
	return nil
}
