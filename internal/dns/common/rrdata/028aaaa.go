package rrdata

import (
	"fmt"
	"net/netip"
)

// encodeAAAAData encodes an AAAA record string into its binary representation.
// IPv4-mapped addresses are rejected; use an A record for those.
func encodeAAAAData(data string) ([]byte, error) {
	// data = "2001:db8::ff00:42:8329"
	ip, err := netip.ParseAddr(data)
	if err != nil || !ip.Is6() || ip.Is4In6() || ip.Zone() != "" {
		return nil, fmt.Errorf("invalid AAAA record IP: %s", data)
	}
	b := ip.As16()
	return b[:], nil
}

func decodeAAAAData(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("invalid AAAA record length: %d", len(b))
	}
	return netip.AddrFrom16([16]byte(b)).String(), nil
}
