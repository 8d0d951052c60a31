// Package resolver is the request pipeline: it answers from the local zone,
// then from the answer cache, and otherwise forwards to the upstream and
// relays the reply back to whoever asked.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/haukened/rr-fwd/internal/dns/common/clock"
	"github.com/haukened/rr-fwd/internal/dns/common/log"
	"github.com/haukened/rr-fwd/internal/dns/common/rrdata"
	"github.com/haukened/rr-fwd/internal/dns/domain"
	"github.com/haukened/rr-fwd/internal/dns/gateways/wire"
)

// Resolver handles one datagram at a time and owns the answer cache and
// the pending-query table. It is not safe for concurrent use; the transport
// calls it from a single receive loop.
type Resolver struct {
	codec    wire.Codec
	zone     ZoneStore
	cache    RecordCache
	upstream Upstream
	clock    clock.Clock
	logger   log.Logger
	metrics  Metrics

	pending map[uint16]domain.PendingQuery
}

// ResolverOptions wires a Resolver. Codec, Zone, Cache and Upstream are
// required; the rest default to the real clock, the global logger and no
// metrics.
type ResolverOptions struct {
	Codec    wire.Codec
	Zone     ZoneStore
	Cache    RecordCache
	Upstream Upstream
	Clock    clock.Clock
	Logger   log.Logger
	Metrics  Metrics
}

func NewResolver(opts ResolverOptions) (*Resolver, error) {
	switch {
	case opts.Codec == nil:
		return nil, errors.New("resolver requires a codec")
	case opts.Zone == nil:
		return nil, errors.New("resolver requires a zone store")
	case opts.Cache == nil:
		return nil, errors.New("resolver requires a record cache")
	case opts.Upstream == nil:
		return nil, errors.New("resolver requires an upstream")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	return &Resolver{
		codec:    opts.Codec,
		zone:     opts.Zone,
		cache:    opts.Cache,
		upstream: opts.Upstream,
		clock:    opts.Clock,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		pending:  make(map[uint16]domain.PendingQuery),
	}, nil
}

// HandleDatagram runs one pipeline cycle for data received from from. The
// returned Outbound is empty when nothing should be sent; a non-nil error
// explains why the datagram was dropped. Outbound.Data may alias data.
func (r *Resolver) HandleDatagram(ctx context.Context, data []byte, from netip.AddrPort) (Outbound, error) {
	if err := ctx.Err(); err != nil {
		return Outbound{}, err
	}
	defer r.updateGauges()

	now := r.clock.Now()
	if n := r.cache.PurgeExpired(now); n > 0 {
		r.logger.Debug(map[string]any{"purged": n}, "Purged expired cache entries")
	}

	msg, err := r.codec.Decode(data)
	if err != nil {
		r.metrics.Observe(OutcomeMalformed)
		return Outbound{}, fmt.Errorf("datagram from %s: %w", from, err)
	}

	if msg.Header.IsQuery() {
		return r.handleQuery(msg, data, from)
	}
	return r.handleReply(msg, data, from)
}

// PendingCount returns the number of forwarded queries awaiting a reply.
func (r *Resolver) PendingCount() int {
	return len(r.pending)
}

func (r *Resolver) handleQuery(msg domain.Message, data []byte, from netip.AddrPort) (Outbound, error) {
	id := msg.Header.ID
	q, err := msg.FirstQuestion()
	if err != nil {
		r.metrics.Observe(OutcomeNoQuestion)
		return Outbound{}, fmt.Errorf("query %d from %s: %w", id, from, err)
	}

	if answers := r.zone.Lookup(q.Name, q.Type, q.Class); len(answers) > 0 {
		return r.answer(msg.Header, q, answers, true, from, OutcomeZone)
	}
	if answers := r.cache.Lookup(q.Name, q.Type, q.Class); len(answers) > 0 {
		return r.answer(msg.Header, q, answers, false, from, OutcomeCache)
	}

	if prev, ok := r.pending[id]; ok {
		r.logger.Warn(map[string]any{
			"id":         id,
			"previous":   prev.Client.String(),
			"client":     from.String(),
			"prev_query": prev.Question.String(),
		}, "Pending query overwritten by a new query with the same ID")
	}
	r.pending[id] = domain.PendingQuery{
		ID:        id,
		Question:  q,
		Client:    from,
		Forwarded: r.clock.Now(),
	}
	r.metrics.Observe(OutcomeForward)

	to := r.upstream.AddrPort()
	r.logger.Debug(map[string]any{
		"id":       id,
		"client":   from.String(),
		"question": q.String(),
		"upstream": to.String(),
	}, "Forwarding query upstream")
	return Outbound{Data: data, To: to}, nil
}

// answer builds and encodes a local reply.
func (r *Resolver) answer(query domain.Header, q domain.Question, answers []domain.ResourceRecord, authoritative bool, to netip.AddrPort, outcome Outcome) (Outbound, error) {
	reply := domain.NewReply(query, q, answers, authoritative)
	out, err := r.codec.EncodeTruncated(reply)
	if err != nil {
		if errors.Is(err, domain.ErrEncodeOverflow) {
			r.metrics.Observe(OutcomeOverflow)
		}
		return Outbound{}, fmt.Errorf("reply %d to %s: %w", query.ID, to, err)
	}
	r.metrics.Observe(outcome)

	fields := map[string]any{
		"id":            query.ID,
		"client":        to.String(),
		"question":      q.String(),
		"answers":       len(answers),
		"authoritative": authoritative,
		"size":          len(out),
	}
	if len(answers) > 0 {
		fields["first"] = rrdata.Text(answers[0].Type, answers[0].Data)
	}
	r.logger.Debug(fields, "Answered query locally")
	return Outbound{Data: out, To: to}, nil
}

func (r *Resolver) handleReply(msg domain.Message, data []byte, from netip.AddrPort) (Outbound, error) {
	id := msg.Header.ID
	p, ok := r.pending[id]
	if !ok {
		r.metrics.Observe(OutcomeUnsolicited)
		return Outbound{}, fmt.Errorf("%w: id %d from %s", domain.ErrUnsolicitedReply, id, from)
	}
	if !r.upstream.IsUpstream(from) {
		r.logger.Debug(map[string]any{
			"id":       id,
			"from":     from.String(),
			"upstream": r.upstream.AddrPort().String(),
		}, "Reply did not come from the upstream; relaying by ID")
	}

	for _, rr := range msg.Answers {
		r.cache.Insert(rr)
	}
	delete(r.pending, id)
	r.metrics.Observe(OutcomeRelay)

	r.logger.Debug(map[string]any{
		"id":       id,
		"client":   p.Client.String(),
		"question": p.Question.String(),
		"answers":  len(msg.Answers),
		"rcode":    msg.Header.RCode.String(),
		"elapsed":  r.clock.Now().Sub(p.Forwarded).String(),
	}, "Relaying upstream reply")
	return Outbound{Data: data, To: p.Client}, nil
}

func (r *Resolver) updateGauges() {
	r.metrics.SetPending(len(r.pending))
	r.metrics.SetCachedRecords(r.cache.Len())
}

var _ DatagramHandler = (*Resolver)(nil)
