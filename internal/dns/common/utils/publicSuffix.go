package utils

import "golang.org/x/net/publicsuffix"

// IsPublicSuffix reports whether name is itself a public suffix such as
// "com" or "co.uk". Nobody may own a zone rooted at one of those.
func IsPublicSuffix(name string) bool {
	name = CanonicalDNSName(name)
	if name == "" {
		return true
	}
	suffix, _ := publicsuffix.PublicSuffix(name)
	return suffix == name
}
