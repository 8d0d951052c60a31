package rrdata

import (
	"fmt"
	"net/netip"
)

// encodeAData encodes an A record string into its binary representation.
func encodeAData(data string) ([]byte, error) {
	// data = "192.168.0.1"
	ip, err := netip.ParseAddr(data)
	if err != nil || !ip.Is4() {
		return nil, fmt.Errorf("invalid A record IP: %s", data)
	}
	b := ip.As4()
	return b[:], nil
}

func decodeAData(b []byte) (string, error) {
	if len(b) != 4 {
		return "", fmt.Errorf("invalid A record length: %d", len(b))
	}
	return netip.AddrFrom4([4]byte(b)).String(), nil
}
