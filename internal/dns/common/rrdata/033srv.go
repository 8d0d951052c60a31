package rrdata

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// encodeSRVData encodes an SRV record string into its binary representation.
func encodeSRVData(data string) ([]byte, error) {
	// data = "priority weight port target"
	parts := strings.Fields(data)
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid SRV record format (expected 4 fields): %s", data)
	}

	buf := make([]byte, 6)
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseUint(parts[i], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid SRV field %d: %w", i, err)
		}
		binary.BigEndian.PutUint16(buf[i*2:], uint16(val))
	}

	target, err := encodeDomainName(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid SRV target: %w", err)
	}
	return append(buf, target...), nil
}

func decodeSRVData(b []byte) (string, error) {
	if len(b) < 7 {
		return "", fmt.Errorf("invalid SRV data length: %d", len(b))
	}
	priority := binary.BigEndian.Uint16(b[0:])
	weight := binary.BigEndian.Uint16(b[2:])
	port := binary.BigEndian.Uint16(b[4:])
	target, err := decodeSingleName(b[6:])
	if err != nil {
		return "", fmt.Errorf("invalid SRV target: %w", err)
	}
	return fmt.Sprintf("%d %d %d %s", priority, weight, port, target), nil
}
