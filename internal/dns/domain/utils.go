package domain

import (
	"strconv"

	"github.com/haukened/rr-fwd/internal/dns/common/utils"
)

// GenerateCacheKey returns a consistent key derived from a DNS name, type and
// class. The name is canonicalized so that lookups are case-insensitive.
// Format: "name|type|class" (e.g. "www.example.com|1|1"). The pipe cannot
// appear unescaped in a presentation-format name.
func GenerateCacheKey(name string, t RRType, c RRClass) string {
	name = utils.CanonicalDNSName(name)
	return name + "|" + strconv.Itoa(int(t)) + "|" + strconv.Itoa(int(c))
}

// displayName renders the root as "." for log output.
func displayName(name string) string {
	if name == "" {
		return "."
	}
	return name
}
