// Package cache provides the short-TTL quote cache shared by both market
// data clients.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL and DefaultSweep match the refresh cadence the snapshot
// assembler is expected to run at: consecutive refreshes inside the TTL
// window reuse cached provider payloads instead of issuing remote calls.
const (
	DefaultTTL   = 15 * time.Second
	DefaultSweep = 2 * time.Minute
)

// QuoteCache is a TTL key/value cache with value-level replace semantics,
// safe for concurrent use. Entries are created only for successful fetches —
// failures are never cached, so recovery happens on the next refresh rather
// than after a TTL wait. Capacity is unbounded by count; the holding set is
// small and fixed, so expiry alone bounds it.
type QuoteCache struct {
	store *gocache.Cache
}

// New creates a QuoteCache with the given TTL and expired-entry sweep
// interval. Non-positive values fall back to the defaults.
func New(ttl, sweep time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweep <= 0 {
		sweep = DefaultSweep
	}
	return &QuoteCache{store: gocache.New(ttl, sweep)}
}

// Get returns the cached value for key, or false when absent or expired.
func (c *QuoteCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Set stores value under key with the cache-wide TTL applied at write time.
func (c *QuoteCache) Set(key string, value interface{}) {
	c.store.SetDefault(key, value)
}

// Flush drops every entry. Used by tests.
func (c *QuoteCache) Flush() {
	c.store.Flush()
}

// ItemCount returns the number of entries including not-yet-swept expired ones.
func (c *QuoteCache) ItemCount() int {
	return c.store.ItemCount()
}

// QuoteKey namespaces a live-quote cache entry so the two providers' entries
// cannot collide.
func QuoteKey(symbol string) string {
	return "yahoo:" + symbol
}

// FundamentalsKey namespaces a fundamentals cache entry. The exchange tag is
// part of the key because the same code can appear under different provider
// exchange tags.
func FundamentalsKey(symbol, exchangeTag string) string {
	return "google:" + symbol + ":" + exchangeTag
}
