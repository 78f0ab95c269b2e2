package options

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/querypilot/nl2sql/internal/metrics"
)

// CacheKey identifies one memoized option list
type CacheKey struct {
	SourceType string
	SystemID   string
	ConfigHash string
}

type cacheEntry struct {
	items     []Item
	expiresAt time.Time
}

// Cache memoizes final option lists. It is a lock-free concurrent map
// with TTL-based read-time eviction and last-write-wins semantics: a
// stale entry only costs a slightly outdated option list, never a
// correctness violation.
type Cache struct {
	entries sync.Map
	ttl     time.Duration
}

// NewCache creates a cache with the given entry lifetime
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Get returns the cached option list if present and not expired.
// Expired entries are removed on read.
func (c *Cache) Get(key CacheKey) ([]Item, bool) {
	value, ok := c.entries.Load(key)
	if !ok {
		metrics.IncrementOptionCacheMiss()
		return nil, false
	}

	entry := value.(cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		metrics.IncrementOptionCacheMiss()

		return nil, false
	}

	metrics.IncrementOptionCacheHit()

	return append([]Item(nil), entry.items...), true
}

// Put stores an option list under the key, replacing any prior entry
func (c *Cache) Put(key CacheKey, items []Item) {
	c.entries.Store(key, cacheEntry{
		items:     append([]Item(nil), items...),
		expiresAt: time.Now().Add(c.ttl),
	})
}

// ConfigHash derives a stable hash from the configuration parts that
// shape an option list (question, label and value columns, and so on)
func ConfigHash(parts ...string) string {
	hasher := sha256.New()
	hasher.Write([]byte(strings.Join(parts, "\x1f")))

	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
