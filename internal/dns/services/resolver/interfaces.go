package resolver

import (
	"context"
	"net/netip"
	"time"

	"github.com/haukened/rr-fwd/internal/dns/domain"
)

// Outbound is a datagram the transport should send. A zero Outbound means
// nothing is sent for the inbound datagram.
type Outbound struct {
	Data []byte
	To   netip.AddrPort
}

// Empty reports whether there is nothing to send.
func (o Outbound) Empty() bool {
	return len(o.Data) == 0
}

// DatagramHandler processes one inbound datagram at a time.
type DatagramHandler interface {
	HandleDatagram(ctx context.Context, data []byte, from netip.AddrPort) (Outbound, error)
}

// ServerTransport defines the interface for DNS server transport implementations.
type ServerTransport interface {
	// Start binds the socket and begins feeding datagrams to handler. A bind
	// failure is returned; later I/O failures are logged.
	Start(ctx context.Context, handler DatagramHandler) error

	// Stop shuts down the transport and releases the socket.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}

// RecordCache stores answers learned from upstream replies.
type RecordCache interface {
	Lookup(name string, t domain.RRType, class domain.RRClass) []domain.ResourceRecord
	Insert(rr domain.ResourceRecord)
	PurgeExpired(now time.Time) int
	Len() int
}

// ZoneStore answers authoritatively for the locally owned zone.
type ZoneStore interface {
	Lookup(name string, t domain.RRType, class domain.RRClass) []domain.ResourceRecord
}

// Upstream is the single resolver that cache misses are forwarded to.
type Upstream interface {
	AddrPort() netip.AddrPort
	IsUpstream(addr netip.AddrPort) bool
}

// Outcome names what happened to one datagram.
type Outcome string

const (
	OutcomeZone        Outcome = "zone"
	OutcomeCache       Outcome = "cache"
	OutcomeForward     Outcome = "forward"
	OutcomeRelay       Outcome = "relay"
	OutcomeMalformed   Outcome = "malformed"
	OutcomeUnsolicited Outcome = "unsolicited"
	OutcomeNoQuestion  Outcome = "no_question"
	OutcomeOverflow    Outcome = "overflow"
)

// Metrics receives pipeline observations.
type Metrics interface {
	Observe(outcome Outcome)
	SetPending(n int)
	SetCachedRecords(n int)
}

// nopMetrics discards observations.
type nopMetrics struct{}

func (nopMetrics) Observe(Outcome)      {}
func (nopMetrics) SetPending(int)       {}
func (nopMetrics) SetCachedRecords(int) {}
