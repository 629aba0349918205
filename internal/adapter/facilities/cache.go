package facilities

import (
	"context"
	"fmt"
	"sync"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
	"github.com/seojedaperez/ignismap-engine/internal/observability"
)

// Surveyor is the facility lookup the cache decorates.
type Surveyor interface {
	Survey(ctx context.Context, location domain.GeoPoint) (domain.ZoneContext, domain.Exposure, error)
}

// CachedClient wraps a Surveyor with an in-memory LRU cache keyed by
// ~1 km grid cell, so the engine's zone lookup and the snapshot
// enrichment for the same fire share one Overpass round trip.
type CachedClient struct {
	inner   Surveyor
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedClient creates a cache decorator around a facility client.
func NewCachedClient(inner Surveyor, maxEntries int, metrics *observability.Metrics) *CachedClient {
	return &CachedClient{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Zone implements the engine's zone provider through the cache.
func (c *CachedClient) Zone(ctx context.Context, location domain.GeoPoint) (domain.ZoneContext, error) {
	zone, _, err := c.Survey(ctx, location)
	return zone, err
}

func (c *CachedClient) Survey(ctx context.Context, location domain.GeoPoint) (domain.ZoneContext, domain.Exposure, error) {
	key := cellKey(location)
	if result, ok := c.cache.get(key); ok {
		c.metrics.ZoneCacheLookups.WithLabelValues("hit").Inc()
		return result.zone, result.exposure, nil
	}
	c.metrics.ZoneCacheLookups.WithLabelValues("miss").Inc()
	zone, exposure, err := c.inner.Survey(ctx, location)
	if err != nil {
		return zone, exposure, err
	}
	c.cache.put(key, surveyResult{zone: zone, exposure: exposure})
	return zone, exposure, nil
}

// cellKey snaps a coordinate to a ~1.1 km grid cell. Facilities do not
// move between fire detections a few hundred meters apart.
func cellKey(location domain.GeoPoint) string {
	return fmt.Sprintf("%.2f,%.2f", location.Lat, location.Lon)
}

type surveyResult struct {
	zone     domain.ZoneContext
	exposure domain.Exposure
}

// lruCache is a simple thread-safe LRU cache for survey results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value surveyResult
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (surveyResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return surveyResult{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value surveyResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
