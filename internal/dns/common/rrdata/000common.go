package rrdata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haukened/rr-fwd/internal/dns/common/utils"
)

const (
	maxLabelLength = 63
	maxWireName    = 255
)

var errTruncatedName = errors.New("domain name runs past end of rdata")

// encodeDomainName encodes a presentation name into uncompressed wire format
// (length-prefixed labels ending in 0). Used by every type that embeds a name.
func encodeDomainName(name string) ([]byte, error) {
	labels, err := utils.SplitLabels(utils.CanonicalDNSName(strings.TrimSpace(name)))
	if err != nil {
		return nil, fmt.Errorf("invalid domain name %q: %w", name, err)
	}
	encoded := make([]byte, 0, len(name)+2)
	for _, label := range labels {
		if len(label) > maxLabelLength {
			return nil, fmt.Errorf("label too long: %s", label)
		}
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}
	encoded = append(encoded, 0)
	if len(encoded) > maxWireName {
		return nil, fmt.Errorf("domain name too long: %d bytes", len(encoded))
	}
	return encoded, nil
}

// decodeDomainName reads one uncompressed name from the front of b and
// returns it with the number of bytes consumed. RDATA stored by the codec is
// always decompressed, so a pointer here is an error.
func decodeDomainName(b []byte) (string, int, error) {
	var labels []string
	i := 0
	for {
		if i >= len(b) {
			return "", 0, errTruncatedName
		}
		n := int(b[i])
		i++
		if n == 0 {
			break
		}
		if n > maxLabelLength {
			return "", 0, fmt.Errorf("invalid label length byte 0x%02x", n)
		}
		if i+n > len(b) {
			return "", 0, errTruncatedName
		}
		labels = append(labels, string(b[i:i+n]))
		i += n
	}
	return utils.JoinLabels(labels), i, nil
}

// decodeSingleName decodes RDATA that is exactly one domain name.
func decodeSingleName(b []byte) (string, error) {
	name, n, err := decodeDomainName(b)
	if err != nil {
		return "", err
	}
	if n != len(b) {
		return "", fmt.Errorf("%d trailing bytes after domain name", len(b)-n)
	}
	return name, nil
}
