// apps/go-server/internal/steam/cache.go
//
// Time-boxed in-memory cache for resolved game pools and storefront details,
// shared by the pipeline's adapters. Explicitly constructed and injected
// (never a package global) so tests and multiple server instances stay
// isolated.
//
// Characteristics:
//   - Keyed by (request kind, parameters) for pools, app id for details.
//   - Entries expire after a fixed TTL (24h by default).
//   - Concurrency-safe via RWMutex.
//   - Expired entries linger until read or swept by PruneExpired.

package steam

import (
	"strconv"
	"sync"
	"time"
)

const defaultCacheTTL = 24 * time.Hour

type poolEntry struct {
	games   []Game
	fetched time.Time
}

type detailsEntry struct {
	details *StoreDetails
	fetched time.Time
}

// Cache holds fetched game pools and storefront details until they expire.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	pools   map[string]poolEntry
	details map[int]detailsEntry
}

// NewCache constructs a Cache with the given TTL; ttl <= 0 means the 24h
// default.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		pools:   make(map[string]poolEntry),
		details: make(map[int]detailsEntry),
	}
}

// poolKey derives the cache key for a pool request.
func poolKey(request, genre string) string {
	if genre == "" {
		return request
	}
	return request + "|" + genre
}

// GetPool returns a cached, non-expired pool for the key, or ok=false.
func (c *Cache) GetPool(request, genre string) ([]Game, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.pools[poolKey(request, genre)]
	if !ok || c.now().Sub(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.games, true
}

// PutPool stores a resolved pool. Last writer wins per key; identical
// upstream data makes that harmless.
func (c *Cache) PutPool(request, genre string, games []Game) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pools[poolKey(request, genre)] = poolEntry{games: games, fetched: c.now()}
}

// GetDetails returns cached storefront details for an app id, or ok=false.
func (c *Cache) GetDetails(appID int) (*StoreDetails, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.details[appID]
	if !ok || c.now().Sub(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.details, true
}

// PutDetails stores storefront details for an app id.
func (c *Cache) PutDetails(appID int, d *StoreDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details[appID] = detailsEntry{details: d, fetched: c.now()}
}

// PruneExpired drops all expired entries and returns how many were removed.
// Run periodically by the scheduler in main.
func (c *Cache) PruneExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	now := c.now()
	for k, e := range c.pools {
		if now.Sub(e.fetched) >= c.ttl {
			delete(c.pools, k)
			removed++
		}
	}
	for k, e := range c.details {
		if now.Sub(e.fetched) >= c.ttl {
			delete(c.details, k)
			removed++
		}
	}
	return removed
}

// Stats returns entry counts: (pools, details). Used by /debug/cache.
func (c *Cache) Stats() (poolCount int, detailsCount int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pools), len(c.details)
}

// String implements a compact debug representation.
func (c *Cache) String() string {
	p, d := c.Stats()
	return "pools=" + strconv.Itoa(p) + " details=" + strconv.Itoa(d)
}
