package rrdata

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// encodeMXData encodes an MX record string into its binary representation.
func encodeMXData(data string) ([]byte, error) {
	// data = 10 mail.example.com
	parts := strings.Fields(data)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid MX record format (expected: preference domain): %s", data)
	}
	pref, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid MX preference: %s", parts[0])
	}
	exchange, err := encodeDomainName(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid MX exchange domain: %s", parts[1])
	}
	return append(binary.BigEndian.AppendUint16(nil, uint16(pref)), exchange...), nil
}

// decodeMXData decodes MX (Mail Exchange) record data from the given byte slice.
func decodeMXData(b []byte) (string, error) {
	if len(b) < 3 {
		return "", fmt.Errorf("invalid MX data length: %d", len(b))
	}
	pref := binary.BigEndian.Uint16(b[:2])
	exchange, err := decodeSingleName(b[2:])
	if err != nil {
		return "", fmt.Errorf("invalid MX exchange domain: %w", err)
	}
	return fmt.Sprintf("%d %s", pref, exchange), nil
}
