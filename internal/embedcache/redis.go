package embedcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is an alternative Cache backend for deployments that share an
// embedding cache across multiple build hosts. It implements the same
// Get/Set/Flush contract as the SQLite-backed Cache, writing through
// immediately rather than buffering (Redis round-trips are cheap enough
// that batching isn't worth the complexity here).
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a cache backed by addr, with vectors expiring
// after ttl (0 disables expiry).
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (r *RedisCache) key(hash string) string { return "embedcache:" + hash }

// Get returns the cached vector for hash, if present.
func (r *RedisCache) Get(hash string) ([]float32, bool) {
	blob, err := r.client.Get(context.Background(), r.key(hash)).Bytes()
	if err != nil {
		return nil, false
	}
	return deserializeVector(blob), true
}

// Set writes vector for hash immediately.
func (r *RedisCache) Set(hash string, vector []float32) {
	_ = r.client.Set(context.Background(), r.key(hash), serializeVector(vector), r.ttl).Err()
}

// Flush is a no-op: RedisCache writes through on Set.
func (r *RedisCache) Flush() error { return nil }

// Close releases the underlying Redis client.
func (r *RedisCache) Close() error { return r.client.Close() }

// Ping verifies connectivity, surfacing configuration errors early.
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("embedcache: redis ping: %w", err)
	}
	return nil
}
