package domain

import "errors"

// Sentinel errors for the request pipeline. Callers wrap them with context
// via fmt.Errorf("...: %w", Err...) and match with errors.Is.
var (
	// ErrMalformedMessage marks a datagram that cannot be decoded: short
	// header, out-of-bounds length, bad compression pointer or a section
	// count that the buffer cannot satisfy.
	ErrMalformedMessage = errors.New("malformed DNS message")

	// ErrUnsolicitedReply marks a reply whose transaction ID has no
	// pending query.
	ErrUnsolicitedReply = errors.New("unsolicited DNS reply")

	// ErrEncodeOverflow marks a message that cannot fit in a UDP datagram.
	ErrEncodeOverflow = errors.New("DNS message exceeds datagram size")

	// ErrCountMismatch marks a message whose header counts disagree with
	// the records it carries.
	ErrCountMismatch = errors.New("DNS header counts do not match sections")

	// ErrNoQuestion marks a query that carries no question to answer.
	ErrNoQuestion = errors.New("DNS query has no question")

	// ErrTransportFailure marks a socket-level send or receive failure.
	ErrTransportFailure = errors.New("DNS transport failure")

	// ErrZoneLoad marks a zone file that cannot be loaded at startup.
	ErrZoneLoad = errors.New("zone load failure")
)
