// Package transport moves raw DNS datagrams between the network and the
// resolver. It knows nothing about the DNS wire format.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/haukened/rr-fwd/internal/dns/common/log"
	"github.com/haukened/rr-fwd/internal/dns/domain"
	"github.com/haukened/rr-fwd/internal/dns/services/resolver"
)

// UDPTransport implements resolver.ServerTransport for DNS over UDP (RFC 1035).
// One goroutine reads a datagram, hands it to the resolver and writes the
// result before reading again.
type UDPTransport struct {
	addr   string
	conn   *net.UDPConn
	logger log.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewUDPTransport creates a new UDP transport instance.
func NewUDPTransport(addr string, logger log.Logger) *UDPTransport {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &UDPTransport{
		addr:   addr,
		logger: logger,
	}
}

// Start binds the UDP socket and starts the receive loop. Cancelling ctx
// has the same effect as Stop.
func (t *UDPTransport) Start(ctx context.Context, handler resolver.DatagramHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("UDP transport already running on %s", t.conn.LocalAddr())
	}

	udpAddr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return fmt.Errorf("%w: failed to resolve UDP address %s: %w", domain.ErrTransportFailure, t.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("%w: failed to bind UDP socket on %s: %w", domain.ErrTransportFailure, t.addr, err)
	}

	t.conn = conn
	t.running = true
	t.done = make(chan struct{})

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   conn.LocalAddr().String(),
	}, "DNS transport started")

	go t.serve(ctx, conn, t.done, handler)
	go func(done <-chan struct{}) {
		select {
		case <-ctx.Done():
			_ = t.Stop()
		case <-done:
		}
	}(t.done)

	return nil
}

// Stop closes the socket and waits for the receive loop to exit.
func (t *UDPTransport) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	closeErr := t.conn.Close()
	done := t.done
	t.mu.Unlock()

	<-done

	if closeErr != nil {
		t.logger.Warn(map[string]any{
			"error": closeErr.Error(),
		}, "Error closing UDP connection")
	}
	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   t.addr,
	}, "DNS transport stopped")
	return closeErr
}

// Address returns the bound address while running, otherwise the configured one.
func (t *UDPTransport) Address() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return t.conn.LocalAddr().String()
	}
	return t.addr
}

// serve is the receive loop. The resolver is only ever called from here.
func (t *UDPTransport) serve(ctx context.Context, conn *net.UDPConn, done chan<- struct{}, handler resolver.DatagramHandler) {
	defer close(done)

	buf := make([]byte, domain.MaxUDPMessageSize)
	for {
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			t.logger.Error(map[string]any{
				"error": fmt.Errorf("%w: read: %w", domain.ErrTransportFailure, err).Error(),
			}, "Failed to read UDP datagram")
			continue
		}
		from = netip.AddrPortFrom(from.Addr().Unmap(), from.Port())

		out, err := handler.HandleDatagram(ctx, buf[:n], from)
		if err != nil {
			t.logDropped(from, n, err)
			continue
		}
		if out.Empty() {
			continue
		}
		if _, err := conn.WriteToUDPAddrPort(out.Data, out.To); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			t.logger.Error(map[string]any{
				"to":    out.To.String(),
				"size":  len(out.Data),
				"error": fmt.Errorf("%w: write: %w", domain.ErrTransportFailure, err).Error(),
			}, "Failed to send UDP datagram")
		}
	}
}

// logDropped records why a datagram produced no output. Bad input from the
// network is routine and stays at debug level. A malformed datagram that
// filled the receive buffer was most likely cut short, e.g. an upstream EDNS
// reply larger than 512 bytes, and is raised to warn.
func (t *UDPTransport) logDropped(from netip.AddrPort, size int, err error) {
	fields := map[string]any{
		"from":  from.String(),
		"size":  size,
		"error": err.Error(),
	}
	switch {
	case errors.Is(err, domain.ErrMalformedMessage) && size >= domain.MaxUDPMessageSize:
		fields["limit"] = domain.MaxUDPMessageSize
		t.logger.Warn(fields, "Dropped datagram truncated at the receive limit")
	case errors.Is(err, domain.ErrMalformedMessage),
		errors.Is(err, domain.ErrUnsolicitedReply),
		errors.Is(err, domain.ErrNoQuestion),
		errors.Is(err, context.Canceled):
		t.logger.Debug(fields, "Dropped datagram")
	case errors.Is(err, domain.ErrEncodeOverflow):
		t.logger.Warn(fields, "Dropped reply that does not fit in a datagram")
	default:
		t.logger.Error(fields, "Failed to handle datagram")
	}
}

var _ resolver.ServerTransport = (*UDPTransport)(nil)
