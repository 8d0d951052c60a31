// Package upstream describes the single upstream resolver that cache misses
// are forwarded to.
package upstream

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/haukened/rr-fwd/internal/dns/services/resolver"
)

// Error message constants for consistent error handling
const (
	errNoAddress      = "no upstream address provided"
	errInvalidAddress = "invalid upstream address %q: %w"
	errResolveFailed  = "resolve upstream host %q: %w"
	errNoHostAddress  = "upstream host %q has no addresses"
	errPortZero       = "upstream address %q has port 0"
)

// LookupFunc resolves a host name to addresses. net.Resolver.LookupNetIP
// satisfies it.
type LookupFunc func(ctx context.Context, network, host string) ([]netip.Addr, error)

// Options configures an Endpoint.
type Options struct {
	// Address is "ip:port" or "host:port".
	Address string
	// Timeout bounds host name resolution at startup.
	Timeout time.Duration
	// Lookup is injected for tests.
	Lookup LookupFunc
}

// Endpoint is the resolved upstream address.
type Endpoint struct {
	addr netip.AddrPort
}

// NewEndpoint resolves opts.Address once. Host names are looked up at
// startup only; the forwarding path never blocks on DNS.
func NewEndpoint(ctx context.Context, opts Options) (*Endpoint, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf(errNoAddress)
	}
	if ap, err := netip.ParseAddrPort(opts.Address); err == nil {
		return newEndpoint(opts.Address, ap)
	}

	host, portStr, err := net.SplitHostPort(opts.Address)
	if err != nil {
		return nil, fmt.Errorf(errInvalidAddress, opts.Address, err)
	}
	port, err := net.LookupPort("udp", portStr)
	if err != nil {
		return nil, fmt.Errorf(errInvalidAddress, opts.Address, err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Lookup == nil {
		opts.Lookup = net.DefaultResolver.LookupNetIP
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	addrs, err := opts.Lookup(ctx, "ip", host)
	if err != nil {
		return nil, fmt.Errorf(errResolveFailed, host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf(errNoHostAddress, host)
	}
	return newEndpoint(opts.Address, netip.AddrPortFrom(addrs[0], uint16(port)))
}

func newEndpoint(raw string, ap netip.AddrPort) (*Endpoint, error) {
	if ap.Port() == 0 {
		return nil, fmt.Errorf(errPortZero, raw)
	}
	return &Endpoint{addr: netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())}, nil
}

// AddrPort returns the address queries are forwarded to.
func (e *Endpoint) AddrPort() netip.AddrPort {
	return e.addr
}

// IsUpstream reports whether addr is the upstream. IPv4-mapped IPv6
// addresses compare equal to their IPv4 form.
func (e *Endpoint) IsUpstream(addr netip.AddrPort) bool {
	return addr.Port() == e.addr.Port() && addr.Addr().Unmap() == e.addr.Addr()
}

func (e *Endpoint) String() string {
	return e.addr.String()
}

var _ resolver.Upstream = (*Endpoint)(nil)
