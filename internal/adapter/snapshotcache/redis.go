// Package snapshotcache stores the last known environmental snapshot
// per grid cell, so analyses can run on cached conditions during
// weather-provider outages.
package snapshotcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

// RedisCache keeps snapshots in Redis with a TTL, shared across engine
// replicas.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a snapshot cache over the given Redis client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for the location's grid cell.
func (c *RedisCache) Get(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, key(location)).Bytes()
	if err == redis.Nil {
		return domain.EnvironmentalSnapshot{}, false, nil
	}
	if err != nil {
		return domain.EnvironmentalSnapshot{}, false, fmt.Errorf("redis get: %w", err)
	}

	var snap domain.EnvironmentalSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.EnvironmentalSnapshot{}, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, true, nil
}

// Put stores the snapshot under the location's grid cell.
func (c *RedisCache) Put(ctx context.Context, location domain.GeoPoint, snap domain.EnvironmentalSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, key(location), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// key snaps a coordinate to a ~1.1 km grid cell; conditions do not
// change meaningfully within one cell.
func key(location domain.GeoPoint) string {
	return fmt.Sprintf("snapshot:%.2f,%.2f", location.Lat, location.Lon)
}
