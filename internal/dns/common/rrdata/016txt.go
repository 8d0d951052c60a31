package rrdata

import (
	"fmt"
	"strings"
)

// encodeTXTData encodes a TXT record string into its binary representation.
// Multiple character-strings are separated by semicolons (RFC 1035 3.3.14).
func encodeTXTData(data string) ([]byte, error) {
	segments := strings.Split(data, ";")
	var encoded []byte
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if len(segment) > 255 {
			return nil, fmt.Errorf("TXT segment too long: %d bytes", len(segment))
		}
		encoded = append(encoded, byte(len(segment)))
		encoded = append(encoded, segment...)
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("TXT record must contain at least one segment")
	}
	return encoded, nil
}

func decodeTXTData(b []byte) (string, error) {
	var segments []string
	for i := 0; i < len(b); {
		n := int(b[i])
		i++
		if i+n > len(b) {
			return "", fmt.Errorf("TXT segment length %d exceeds data", n)
		}
		segments = append(segments, string(b[i:i+n]))
		i += n
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("TXT record has no segments")
	}
	return strings.Join(segments, ";"), nil
}
