// Package wire provides encoding and decoding of DNS messages for UDP transport.
// It handles the DNS wire format as specified in RFC 1035.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/haukened/rr-fwd/internal/dns/common/log"
	"github.com/haukened/rr-fwd/internal/dns/common/utils"
	"github.com/haukened/rr-fwd/internal/dns/domain"
)

const (
	maxLabelLength = domain.MaxLabelLength
	// maxWireName is the RFC 1035 limit on an encoded name, length bytes included.
	maxWireName = 255
	// maxPointerHops caps compression pointers followed for one name.
	maxPointerHops = 64
	// questionFixedLen is QTYPE + QCLASS.
	questionFixedLen = 4
	// recordFixedLen is TYPE + CLASS + TTL + RDLENGTH.
	recordFixedLen = 10
)

// udpCodec implements the Codec interface for standard DNS over UDP messages.
type udpCodec struct {
	logger log.Logger
}

var _ Codec = (*udpCodec)(nil)

// NewUDPCodec creates and returns a new instance of udpCodec using the provided logger.
func NewUDPCodec(logger log.Logger) *udpCodec {
	return &udpCodec{
		logger: logger,
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedMessage, fmt.Sprintf(format, args...))
}

// Decode parses a complete DNS message. Owner names and names embedded in
// NS, CNAME, PTR, MX and SOA RDATA are decompressed. Bytes after the last
// counted record are ignored.
func (c *udpCodec) Decode(data []byte) (domain.Message, error) {
	var msg domain.Message
	if len(data) < domain.HeaderSize {
		return msg, malformed("message is %d bytes, header needs %d", len(data), domain.HeaderSize)
	}

	h := &msg.Header
	h.ID = binary.BigEndian.Uint16(data[0:2])
	h.SetFlags(binary.BigEndian.Uint16(data[2:4]))
	h.QDCount = binary.BigEndian.Uint16(data[4:6])
	h.ANCount = binary.BigEndian.Uint16(data[6:8])
	h.NSCount = binary.BigEndian.Uint16(data[8:10])
	h.ARCount = binary.BigEndian.Uint16(data[10:12])

	off := domain.HeaderSize
	if h.QDCount > 0 {
		msg.Questions = make([]domain.Question, 0, min(int(h.QDCount), len(data)/5))
	}
	for i := 0; i < int(h.QDCount); i++ {
		q, next, err := decodeQuestion(data, off)
		if err != nil {
			return domain.Message{}, fmt.Errorf("question %d: %w", i, err)
		}
		msg.Questions = append(msg.Questions, q)
		off = next
	}

	var err error
	if msg.Answers, off, err = decodeSection(data, off, h.ANCount, "answer"); err != nil {
		return domain.Message{}, err
	}
	if msg.Authority, off, err = decodeSection(data, off, h.NSCount, "authority"); err != nil {
		return domain.Message{}, err
	}
	if msg.Additional, _, err = decodeSection(data, off, h.ARCount, "additional"); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func decodeQuestion(data []byte, off int) (domain.Question, int, error) {
	labels, next, err := readName(data, off)
	if err != nil {
		return domain.Question{}, 0, err
	}
	if next+questionFixedLen > len(data) {
		return domain.Question{}, 0, malformed("question at offset %d truncated", off)
	}
	q := domain.Question{
		Name:  utils.JoinLabels(labels),
		Type:  domain.RRType(binary.BigEndian.Uint16(data[next:])),
		Class: domain.RRClass(binary.BigEndian.Uint16(data[next+2:])),
	}
	return q, next + questionFixedLen, nil
}

func decodeSection(data []byte, off int, count uint16, section string) ([]domain.ResourceRecord, int, error) {
	if count == 0 {
		return nil, off, nil
	}
	records := make([]domain.ResourceRecord, 0, min(int(count), len(data)/11))
	for i := 0; i < int(count); i++ {
		rr, next, err := decodeRecord(data, off)
		if err != nil {
			return nil, 0, fmt.Errorf("%s record %d: %w", section, i, err)
		}
		records = append(records, rr)
		off = next
	}
	return records, off, nil
}

func decodeRecord(data []byte, off int) (domain.ResourceRecord, int, error) {
	labels, next, err := readName(data, off)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	if next+recordFixedLen > len(data) {
		return domain.ResourceRecord{}, 0, malformed("record at offset %d truncated", off)
	}
	rr := domain.ResourceRecord{
		Name:  utils.JoinLabels(labels),
		Type:  domain.RRType(binary.BigEndian.Uint16(data[next:])),
		Class: domain.RRClass(binary.BigEndian.Uint16(data[next+2:])),
		TTL:   binary.BigEndian.Uint32(data[next+4:]),
	}
	rdlen := int(binary.BigEndian.Uint16(data[next+8:]))
	start := next + recordFixedLen
	end := start + rdlen
	if end > len(data) {
		return domain.ResourceRecord{}, 0, malformed("rdlength %d runs past end of message", rdlen)
	}
	rr.Data, err = decodeRData(data, start, end, rr.Type)
	if err != nil {
		return domain.ResourceRecord{}, 0, fmt.Errorf("%s rdata: %w", rr.Type, err)
	}
	return rr, end, nil
}

// decodeRData copies the RDATA in data[start:end], expanding compressed
// names for the types known to embed them.
func decodeRData(data []byte, start, end int, t domain.RRType) ([]byte, error) {
	// names are read from the whole message so pointers resolve, but must
	// finish inside the record
	rdata := data[:end]
	switch t {
	case domain.RRTypeNS, domain.RRTypeCNAME, domain.RRTypePTR:
		out, next, err := expandName(rdata, start, nil)
		if err != nil {
			return nil, err
		}
		return out, checkConsumed(next, end)
	case domain.RRTypeMX:
		if start+2 > end {
			return nil, malformed("MX rdata too short")
		}
		out := append([]byte(nil), data[start:start+2]...)
		out, next, err := expandName(rdata, start+2, out)
		if err != nil {
			return nil, err
		}
		return out, checkConsumed(next, end)
	case domain.RRTypeSOA:
		out, next, err := expandName(rdata, start, nil)
		if err != nil {
			return nil, err
		}
		out, next, err = expandName(rdata, next, out)
		if err != nil {
			return nil, err
		}
		if next+20 != end {
			return nil, malformed("SOA rdata has %d bytes after names, want 20", end-next)
		}
		return append(out, data[next:end]...), nil
	default:
		return append([]byte(nil), data[start:end]...), nil
	}
}

func checkConsumed(next, end int) error {
	if next != end {
		return malformed("%d bytes of rdata after embedded name", end-next)
	}
	return nil
}

// expandName reads a possibly compressed name at off and appends its
// uncompressed wire form to dst.
func expandName(data []byte, off int, dst []byte) ([]byte, int, error) {
	labels, next, err := readName(data, off)
	if err != nil {
		return nil, 0, err
	}
	for _, l := range labels {
		dst = append(dst, byte(len(l)))
		dst = append(dst, l...)
	}
	return append(dst, 0), next, nil
}

// readName reads the labels of the name starting at off and returns the
// offset just past the name in the original byte stream. A compression
// pointer must refer to an offset strictly before the pointer itself, so
// every hop moves backward and the walk terminates.
func readName(data []byte, off int) ([]string, int, error) {
	var labels []string
	pos := off
	next := -1
	wireLen := 1 // terminating zero
	hops := 0
	for {
		if pos >= len(data) {
			return nil, 0, malformed("name at offset %d runs past end", off)
		}
		b := data[pos]
		switch b & 0xC0 {
		case 0x00:
			n := int(b)
			if n == 0 {
				if next < 0 {
					next = pos + 1
				}
				return labels, next, nil
			}
			if pos+1+n > len(data) {
				return nil, 0, malformed("label at offset %d runs past end", pos)
			}
			wireLen += 1 + n
			if wireLen > maxWireName {
				return nil, 0, malformed("name at offset %d exceeds %d bytes", off, maxWireName)
			}
			labels = append(labels, string(data[pos+1:pos+1+n]))
			pos += 1 + n
		case 0xC0:
			if pos+1 >= len(data) {
				return nil, 0, malformed("compression pointer at offset %d truncated", pos)
			}
			ptr := int(binary.BigEndian.Uint16(data[pos:]) & 0x3FFF)
			if ptr >= pos {
				return nil, 0, malformed("compression pointer at offset %d does not point backward (%d)", pos, ptr)
			}
			hops++
			if hops > maxPointerHops {
				return nil, 0, malformed("name at offset %d follows too many pointers", off)
			}
			if next < 0 {
				next = pos + 2
			}
			pos = ptr
		default:
			return nil, 0, malformed("reserved label type 0x%02x at offset %d", b&0xC0, pos)
		}
	}
}

// Encode serializes msg with uncompressed names.
func (c *udpCodec) Encode(msg domain.Message) ([]byte, error) {
	if err := msg.CheckCounts(); err != nil {
		return nil, err
	}

	buf := make([]byte, domain.HeaderSize, domain.MaxUDPMessageSize)
	h := msg.Header
	binary.BigEndian.PutUint16(buf[0:], h.ID)
	binary.BigEndian.PutUint16(buf[2:], h.Flags())
	binary.BigEndian.PutUint16(buf[4:], h.QDCount)
	binary.BigEndian.PutUint16(buf[6:], h.ANCount)
	binary.BigEndian.PutUint16(buf[8:], h.NSCount)
	binary.BigEndian.PutUint16(buf[10:], h.ARCount)

	var err error
	for _, q := range msg.Questions {
		if buf, err = appendName(buf, q.Name); err != nil {
			return nil, fmt.Errorf("question %q: %w", q.Name, err)
		}
		buf = binary.BigEndian.AppendUint16(buf, uint16(q.Type))
		buf = binary.BigEndian.AppendUint16(buf, uint16(q.Class))
	}
	for _, section := range [][]domain.ResourceRecord{msg.Answers, msg.Authority, msg.Additional} {
		for _, rr := range section {
			if buf, err = appendRecord(buf, rr); err != nil {
				return nil, err
			}
		}
	}

	if len(buf) > domain.MaxUDPMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrEncodeOverflow, len(buf))
	}
	return buf, nil
}

// EncodeTruncated encodes msg, dropping records from the end of the answer
// section, then authority, then additional, until it fits. TC is set when
// anything was dropped.
func (c *udpCodec) EncodeTruncated(msg domain.Message) ([]byte, error) {
	out, err := c.Encode(msg)
	if !errors.Is(err, domain.ErrEncodeOverflow) {
		return out, err
	}

	m := msg
	m.Header.Truncated = true
	dropped := 0
	for {
		switch {
		case len(m.Answers) > 0:
			m.Answers = m.Answers[:len(m.Answers)-1]
		case len(m.Authority) > 0:
			m.Authority = m.Authority[:len(m.Authority)-1]
		case len(m.Additional) > 0:
			m.Additional = m.Additional[:len(m.Additional)-1]
		default:
			return nil, fmt.Errorf("%w: header and question alone do not fit", domain.ErrEncodeOverflow)
		}
		dropped++
		m.SyncCounts()

		out, err = c.Encode(m)
		if err == nil {
			c.logger.Debug(map[string]any{
				"id":      m.Header.ID,
				"dropped": dropped,
				"size":    len(out),
			}, "Truncated DNS message to fit datagram")
			return out, nil
		}
		if !errors.Is(err, domain.ErrEncodeOverflow) {
			return nil, err
		}
	}
}

func appendRecord(buf []byte, rr domain.ResourceRecord) ([]byte, error) {
	buf, err := appendName(buf, rr.Name)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", rr.Name, err)
	}
	if len(rr.Data) > 0xFFFF {
		return nil, fmt.Errorf("record %q: rdata of %d bytes exceeds rdlength", rr.Name, len(rr.Data))
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(rr.Type))
	buf = binary.BigEndian.AppendUint16(buf, uint16(rr.Class))
	buf = binary.BigEndian.AppendUint32(buf, rr.TTL)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(rr.Data)))
	return append(buf, rr.Data...), nil
}

// appendName writes name as uncompressed length-prefixed labels. Case is
// preserved.
func appendName(buf []byte, name string) ([]byte, error) {
	labels, err := utils.SplitLabels(name)
	if err != nil {
		return nil, err
	}
	wireLen := 1
	for _, l := range labels {
		if len(l) > maxLabelLength {
			return nil, fmt.Errorf("label %q exceeds %d bytes", l, maxLabelLength)
		}
		wireLen += 1 + len(l)
	}
	if wireLen > maxWireName {
		return nil, fmt.Errorf("name exceeds %d bytes", maxWireName)
	}
	for _, l := range labels {
		buf = append(buf, byte(len(l)))
		buf = append(buf, l...)
	}
	return append(buf, 0), nil
}
