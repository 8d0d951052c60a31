// Package zonecache is the in-memory lookup table for the authoritative zone.
package zonecache

import (
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/rr-fwd/internal/dns/common/utils"
	"github.com/haukened/rr-fwd/internal/dns/domain"
	"github.com/haukened/rr-fwd/internal/dns/services/resolver"
)

// falsePositiveRate sizes the key filter.
const falsePositiveRate = 0.01

// ZoneCache holds the static records of one zone, grouped by cache key. It
// is built once at startup and never modified, so reads need no locking.
type ZoneCache struct {
	root    string
	records map[string][]domain.ResourceRecord
	keys    *bloom.BloomFilter
	count   int
}

// New builds the table for zone root from records. Records outside the zone
// are ignored.
func New(root string, records []domain.ResourceRecord) *ZoneCache {
	zc := &ZoneCache{
		root:    utils.CanonicalDNSName(root),
		records: make(map[string][]domain.ResourceRecord),
		keys:    bloom.NewWithEstimates(uint(max(len(records), 1)), falsePositiveRate),
	}
	for _, rr := range records {
		if !utils.InZone(rr.Name, zc.root) {
			continue
		}
		key := rr.CacheKey()
		zc.records[key] = append(zc.records[key], rr)
		zc.keys.AddString(key)
		zc.count++
	}
	return zc
}

// Lookup returns the records matching name, type and class, or nil. Names
// outside the zone and keys the filter has never seen return before the map
// is read.
func (zc *ZoneCache) Lookup(name string, t domain.RRType, class domain.RRClass) []domain.ResourceRecord {
	if !utils.InZone(name, zc.root) {
		return nil
	}
	key := domain.GenerateCacheKey(name, t, class)
	if !zc.keys.TestString(key) {
		return nil
	}
	records, ok := zc.records[key]
	if !ok {
		return nil
	}
	out := make([]domain.ResourceRecord, len(records))
	copy(out, records)
	return out
}

// Root returns the canonical zone root.
func (zc *ZoneCache) Root() string {
	return zc.root
}

// Count returns the number of records held.
func (zc *ZoneCache) Count() int {
	return zc.count
}

// Ensure ZoneCache implements resolver.ZoneStore at compile time
var _ resolver.ZoneStore = (*ZoneCache)(nil)
