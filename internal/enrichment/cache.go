package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "housy:enrichment:"
	defaultCacheTTL = time.Hour
)

// Cache holds recently read enrichment records.
type Cache interface {
	Get(ctx context.Context, propertyID string) (Params, bool, error)
	Set(ctx context.Context, p Params) error
	Delete(ctx context.Context, propertyID string) error
}

// redisCmds is the subset of the go-redis client used by RedisCache.
type redisCmds interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache stores records as JSON under housy:enrichment:<propertyId>.
type RedisCache struct {
	client redisCmds
	ttl    time.Duration
}

// NewRedisCache wraps a go-redis client. A non-positive ttl uses one hour.
func NewRedisCache(client redisCmds, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, propertyID string) (Params, bool, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+propertyID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Params{}, false, nil
	}
	if err != nil {
		return Params{}, false, err
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, false, err
	}
	return p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, p Params) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+p.PropertyID, data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, propertyID string) error {
	return c.client.Del(ctx, cacheKeyPrefix+propertyID).Err()
}

var _ Cache = (*RedisCache)(nil)
