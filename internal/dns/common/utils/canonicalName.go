package utils

import "strings"

// CanonicalDNSName returns a DNS name in canonical form:
// - Lowercased
// - No trailing dot; the root is the empty string
//
// Whitespace is significant: a space is a legal byte inside a wire label.
// Callers holding human-typed text trim it themselves.
func CanonicalDNSName(name string) string {
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") && !strings.HasSuffix(name, `\.`) {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// InZone reports whether name is the zone root itself or a name below it.
// Both arguments are canonicalized first.
func InZone(name, root string) bool {
	name = CanonicalDNSName(name)
	root = CanonicalDNSName(root)
	if root == "" {
		return true
	}
	if name == root {
		return true
	}
	return strings.HasSuffix(name, "."+root)
}
