// Package recordcache holds answers learned from upstream replies until
// their TTL runs out.
package recordcache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-fwd/internal/dns/common/clock"
	"github.com/haukened/rr-fwd/internal/dns/domain"
	"github.com/haukened/rr-fwd/internal/dns/services/resolver"
)

// entry is one cached record with its absolute expiry.
type entry struct {
	record    domain.ResourceRecord
	expiresAt time.Time
}

// entrySet holds every record sharing one cache key. It is stored by
// pointer so purges can shrink it without touching LRU recency.
type entrySet struct {
	entries []entry
}

// recordCache is a TTL-aware cache of resource records. Keys are held in an
// LRU so the number of distinct (name, type, class) keys is bounded; each key
// may carry several records.
type recordCache struct {
	lru   *lru.Cache[string, *entrySet]
	clock clock.Clock
	count int
}

// New returns a cache holding at most size keys.
func New(size int, clk clock.Clock) (*recordCache, error) {
	c := &recordCache{clock: clk}
	cache, err := lru.NewWithEvict[string, *entrySet](size, func(_ string, set *entrySet) {
		c.count -= len(set.entries)
	})
	if err != nil {
		return nil, err
	}
	c.lru = cache
	return c, nil
}

// Insert stores rr until now + TTL. Records with TTL 0, or with the top bit
// of the TTL set, are not cached. A record identical to a cached one apart
// from TTL replaces that entry's expiry instead of adding a duplicate.
func (c *recordCache) Insert(rr domain.ResourceRecord) {
	if !rr.Cacheable() {
		return
	}
	e := entry{record: rr, expiresAt: rr.ExpiresAt(c.clock.Now())}
	key := rr.CacheKey()

	set, ok := c.lru.Get(key)
	if !ok {
		c.count++
		c.lru.Add(key, &entrySet{entries: []entry{e}})
		return
	}
	for i := range set.entries {
		if set.entries[i].record.SameData(rr) {
			set.entries[i] = e
			return
		}
	}
	set.entries = append(set.entries, e)
	c.count++
}

// Lookup returns the unexpired records for the key with their TTL set to
// the seconds remaining. It never changes the cache.
func (c *recordCache) Lookup(name string, t domain.RRType, class domain.RRClass) []domain.ResourceRecord {
	set, ok := c.lru.Peek(domain.GenerateCacheKey(name, t, class))
	if !ok {
		return nil
	}
	now := c.clock.Now()
	var out []domain.ResourceRecord
	for _, e := range set.entries {
		if !e.expiresAt.After(now) {
			continue
		}
		out = append(out, e.record.WithTTL(uint32(e.expiresAt.Sub(now)/time.Second)))
	}
	return out
}

// PurgeExpired removes every entry whose expiry is at or before now and
// returns how many were removed.
func (c *recordCache) PurgeExpired(now time.Time) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		set, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		kept := set.entries[:0]
		for _, e := range set.entries {
			if e.expiresAt.After(now) {
				kept = append(kept, e)
			}
		}
		n := len(set.entries) - len(kept)
		if n == 0 {
			continue
		}
		removed += n
		c.count -= n
		set.entries = kept
		if len(kept) == 0 {
			c.lru.Remove(key)
		}
	}
	return removed
}

// Len returns the number of cached records across all keys.
func (c *recordCache) Len() int {
	return c.count
}

// keyCount returns the number of distinct keys held.
func (c *recordCache) keyCount() int {
	return c.lru.Len()
}

var _ resolver.RecordCache = (*recordCache)(nil)
