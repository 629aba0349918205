package snapshotcache

import (
	"context"
	"sync"
	"time"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

// MemoryCache is the single-replica fallback used when Redis is not
// configured. Entries expire after the same TTL Redis would apply.
type MemoryCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snap      domain.EnvironmentalSnapshot
	expiresAt time.Time
}

// NewMemoryCache creates an in-process snapshot cache.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key(location)]
	if !ok {
		return domain.EnvironmentalSnapshot{}, false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key(location))
		return domain.EnvironmentalSnapshot{}, false, nil
	}
	return e.snap, true, nil
}

func (c *MemoryCache) Put(_ context.Context, location domain.GeoPoint, snap domain.EnvironmentalSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key(location)] = memoryEntry{
		snap:      snap,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}
