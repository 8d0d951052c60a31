package rrdata

import (
	"encoding/hex"

	"github.com/haukened/rr-fwd/internal/dns/domain"
)

// Decode renders RDATA in the same text form Encode accepts. Types without a
// text form are rendered as hex.
func Decode(rrType domain.RRType, data []byte) (string, error) {
	switch rrType {
	case domain.RRTypeA: // 1
		return decodeAData(data)
	case domain.RRTypeNS: // 2
		return decodeNSData(data)
	case domain.RRTypeCNAME: // 5
		return decodeCNAMEData(data)
	case domain.RRTypeSOA: // 6
		return decodeSOAData(data)
	case domain.RRTypePTR: // 12
		return decodePTRData(data)
	case domain.RRTypeMX: // 15
		return decodeMXData(data)
	case domain.RRTypeTXT: // 16
		return decodeTXTData(data)
	case domain.RRTypeAAAA: // 28
		return decodeAAAAData(data)
	case domain.RRTypeSRV: // 33
		return decodeSRVData(data)
	case domain.RRTypeCAA: // 257
		return decodeCAAData(data)
	default:
		return hex.EncodeToString(data), nil
	}
}

// Text is Decode for log output: it never fails, falling back to hex.
func Text(rrType domain.RRType, data []byte) string {
	s, err := Decode(rrType, data)
	if err != nil {
		return hex.EncodeToString(data)
	}
	return s
}
