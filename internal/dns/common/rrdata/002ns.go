package rrdata

// NS, CNAME and PTR all carry a single domain name.

func encodeNSData(data string) ([]byte, error) {
	// data = "ns.example.com"
	return encodeDomainName(data)
}

func decodeNSData(b []byte) (string, error) {
	return decodeSingleName(b)
}

func encodeCNAMEData(data string) ([]byte, error) {
	return encodeDomainName(data)
}

func decodeCNAMEData(b []byte) (string, error) {
	return decodeSingleName(b)
}

func encodePTRData(data string) ([]byte, error) {
	// data = "host.example.com" for 1.2.0.192.in-addr.arpa
	return encodeDomainName(data)
}

func decodePTRData(b []byte) (string, error) {
	return decodeSingleName(b)
}
