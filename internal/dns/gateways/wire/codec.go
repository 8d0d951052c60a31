package wire

import (
	"github.com/haukened/rr-fwd/internal/dns/domain"
)

// Codec converts between raw DNS datagrams and domain messages.
type Codec interface {
	// Decode parses a datagram. Every failure wraps domain.ErrMalformedMessage.
	Decode(data []byte) (domain.Message, error)
	// Encode serializes msg without name compression. It fails with
	// domain.ErrCountMismatch or domain.ErrEncodeOverflow.
	Encode(msg domain.Message) ([]byte, error)
	// EncodeTruncated is Encode that drops trailing records and sets TC
	// until the message fits in a datagram.
	EncodeTruncated(msg domain.Message) ([]byte, error)
}
