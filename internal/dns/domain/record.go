package domain

import (
	"bytes"
	"fmt"
	"time"

	"github.com/haukened/rr-fwd/internal/dns/common/utils"
)

const (
	// MaxNameLength bounds a presentation name. The encoded form adds one
	// length byte per label and the terminating zero.
	MaxNameLength = 253
	// MaxLabelLength bounds a single label on the wire.
	MaxLabelLength = 63
)

// ResourceRecord is one DNS resource record. Data holds the raw RDATA with
// any embedded domain names already decompressed, so the bytes are valid
// without the message they arrived in.
type ResourceRecord struct {
	Name  string
	Type  RRType
	Class RRClass
	TTL   uint32
	Data  []byte
}

// NewResourceRecord constructs a validated record with a canonical owner name.
func NewResourceRecord(name string, rrtype RRType, class RRClass, ttl uint32, data []byte) (ResourceRecord, error) {
	rr := ResourceRecord{
		Name:  utils.CanonicalDNSName(name),
		Type:  rrtype,
		Class: class,
		TTL:   ttl,
		Data:  data,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// Validate checks whether the ResourceRecord fields are valid.
func (rr ResourceRecord) Validate() error {
	if len(rr.Name) > MaxNameLength {
		return fmt.Errorf("record name exceeds %d bytes", MaxNameLength)
	}
	if !rr.Type.IsValid() {
		return fmt.Errorf("invalid RRType: %d", rr.Type)
	}
	if !rr.Class.IsValid() {
		return fmt.Errorf("invalid RRClass: %d", rr.Class)
	}
	if len(rr.Data) > 0xFFFF {
		return fmt.Errorf("rdata exceeds %d bytes", 0xFFFF)
	}
	return nil
}

// CacheKey returns a cache key string derived from the record's name, type, and class.
func (rr ResourceRecord) CacheKey() string {
	return GenerateCacheKey(rr.Name, rr.Type, rr.Class)
}

// SameData reports whether other describes the same record apart from TTL.
func (rr ResourceRecord) SameData(other ResourceRecord) bool {
	return rr.CacheKey() == other.CacheKey() && bytes.Equal(rr.Data, other.Data)
}

// Cacheable reports whether the TTL permits caching. A zero TTL means use
// once, and RFC 2181 section 8 treats values with the top bit set as zero.
func (rr ResourceRecord) Cacheable() bool {
	return rr.TTL != 0 && rr.TTL&(1<<31) == 0
}

// ExpiresAt returns the absolute expiry of rr if it were stored at now.
func (rr ResourceRecord) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(rr.TTL) * time.Second)
}

// WithTTL returns a copy of rr carrying ttl.
func (rr ResourceRecord) WithTTL(ttl uint32) ResourceRecord {
	rr.TTL = ttl
	return rr
}

func (rr ResourceRecord) String() string {
	return fmt.Sprintf("%s %d %s %s (%d bytes)", displayName(rr.Name), rr.TTL, rr.Class, rr.Type, len(rr.Data))
}
