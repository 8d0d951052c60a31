package wire

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-fwd/internal/dns/common/log"
	"github.com/haukened/rr-fwd/internal/dns/common/rrdata"
	"github.com/haukened/rr-fwd/internal/dns/domain"
)

func newTestCodec() *udpCodec {
	return NewUDPCodec(log.NewNoopLogger())
}

func header(id, flags, qd, an, ns, ar uint16) []byte {
	b := make([]byte, 12)
	binary.BigEndian.PutUint16(b[0:], id)
	binary.BigEndian.PutUint16(b[2:], flags)
	binary.BigEndian.PutUint16(b[4:], qd)
	binary.BigEndian.PutUint16(b[6:], an)
	binary.BigEndian.PutUint16(b[8:], ns)
	binary.BigEndian.PutUint16(b[10:], ar)
	return b
}

func mustRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	require.NoError(t, err)
	return rr
}

func mustRData(t *testing.T, rrType domain.RRType, text string) []byte {
	t.Helper()
	b, err := rrdata.Encode(rrType, text)
	require.NoError(t, err)
	return b
}

func TestUdpCodec_DecodeCompressedReply(t *testing.T) {
	m := new(dns.Msg)
	m.SetQuestion("www.example.com.", dns.TypeA)
	m.Id = 0x1234
	m.Response = true
	m.RecursionAvailable = true
	m.Compress = true
	m.Answer = []dns.RR{
		mustRR(t, "www.example.com. 300 IN CNAME web.example.com."),
		mustRR(t, "web.example.com. 120 IN A 192.0.2.1"),
	}
	m.Ns = []dns.RR{
		mustRR(t, "example.com. 3600 IN SOA ns1.example.com. hostmaster.example.com. 1 7200 3600 1209600 300"),
		mustRR(t, "example.com. 3600 IN NS ns1.example.com."),
	}
	m.Extra = []dns.RR{
		mustRR(t, "example.com. 3600 IN MX 10 mail.example.com."),
		mustRR(t, "1.2.0.192.in-addr.arpa. 60 IN PTR web.example.com."),
	}
	packed, err := m.Pack()
	require.NoError(t, err)

	c := newTestCodec()
	msg, err := c.Decode(packed)
	require.NoError(t, err)

	h := msg.Header
	assert.Equal(t, uint16(0x1234), h.ID)
	assert.True(t, h.Response)
	assert.True(t, h.RecursionDesired)
	assert.True(t, h.RecursionAvailable)
	assert.Equal(t, []domain.Question{{Name: "www.example.com", Type: domain.RRTypeA, Class: domain.RRClassIN}}, msg.Questions)

	require.Len(t, msg.Answers, 2)
	assert.Equal(t, "www.example.com", msg.Answers[0].Name)
	assert.Equal(t, domain.RRTypeCNAME, msg.Answers[0].Type)
	assert.Equal(t, uint32(300), msg.Answers[0].TTL)
	assert.Equal(t, mustRData(t, domain.RRTypeCNAME, "web.example.com"), msg.Answers[0].Data)
	assert.Equal(t, "web.example.com", msg.Answers[1].Name)
	assert.Equal(t, []byte{192, 0, 2, 1}, msg.Answers[1].Data)

	require.Len(t, msg.Authority, 2)
	assert.Equal(t, mustRData(t, domain.RRTypeSOA, "ns1.example.com hostmaster.example.com 1 7200 3600 1209600 300"), msg.Authority[0].Data)
	assert.Equal(t, mustRData(t, domain.RRTypeNS, "ns1.example.com"), msg.Authority[1].Data)

	require.Len(t, msg.Additional, 2)
	assert.Equal(t, mustRData(t, domain.RRTypeMX, "10 mail.example.com"), msg.Additional[0].Data)
	assert.Equal(t, mustRData(t, domain.RRTypePTR, "web.example.com"), msg.Additional[1].Data)

	// the decoded message re-encodes without compression, so it must be larger
	plain, err := c.Encode(msg)
	require.NoError(t, err)
	assert.Greater(t, len(plain), len(packed))
}

func TestUdpCodec_EncodeReadableByIndependentParser(t *testing.T) {
	msg := domain.NewReply(
		domain.Header{ID: 0xBEEF, RecursionDesired: true},
		domain.Question{Name: "www.example.com", Type: domain.RRTypeA, Class: domain.RRClassIN},
		[]domain.ResourceRecord{
			{Name: "www.example.com", Type: domain.RRTypeA, Class: domain.RRClassIN, TTL: 300, Data: []byte{192, 0, 2, 10}},
			{Name: "www.example.com", Type: domain.RRTypeA, Class: domain.RRClassIN, TTL: 300, Data: []byte{192, 0, 2, 11}},
		},
		true,
	)

	b, err := newTestCodec().Encode(msg)
	require.NoError(t, err)

	var m dns.Msg
	require.NoError(t, m.Unpack(b))
	assert.Equal(t, uint16(0xBEEF), m.Id)
	assert.True(t, m.Response)
	assert.True(t, m.Authoritative)
	assert.True(t, m.RecursionDesired)
	assert.True(t, m.RecursionAvailable)
	assert.Equal(t, dns.RcodeSuccess, m.Rcode)
	require.Len(t, m.Question, 1)
	assert.Equal(t, "www.example.com.", m.Question[0].Name)
	require.Len(t, m.Answer, 2)
	a, ok := m.Answer[1].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "192.0.2.11", a.A.String())
	assert.Equal(t, uint32(300), a.Hdr.Ttl)
}

func TestUdpCodec_RoundTrip(t *testing.T) {
	msg := domain.Message{
		Header: domain.Header{ID: 7, Response: true, Opcode: domain.OpcodeQuery, RecursionDesired: true, RCode: domain.NXDOMAIN, Zero: 2},
		Questions: []domain.Question{
			{Name: "Mixed.Case.Example", Type: domain.RRTypeMX, Class: domain.RRClassIN},
		},
		Answers: []domain.ResourceRecord{
			{Name: `dot\.inside.example`, Type: domain.RRTypeTXT, Class: domain.RRClassIN, TTL: 60, Data: []byte{2, 'h', 'i'}},
			{Name: "mixed.case.example", Type: domain.RRTypeMX, Class: domain.RRClassIN, TTL: 60, Data: mustRData(t, domain.RRTypeMX, "5 mx.example")},
		},
		Authority: []domain.ResourceRecord{
			{Name: "", Type: domain.RRTypeNS, Class: domain.RRClassIN, TTL: 518400, Data: mustRData(t, domain.RRTypeNS, "a.root-servers.net")},
		},
		Additional: []domain.ResourceRecord{
			{Name: "unknown.example", Type: domain.RRType(65280), Class: domain.RRClassIN, TTL: 1, Data: []byte{0xde, 0xad, 0xbe, 0xef}},
		},
	}
	msg.SyncCounts()

	c := newTestCodec()
	b, err := c.Encode(msg)
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestUdpCodec_DecodeTrailingBytesIgnored(t *testing.T) {
	data := header(1, 0x0100, 1, 0, 0, 0)
	data = append(data, 1, 'a', 0, 0, 1, 0, 1)
	data = append(data, 0xFF, 0xFF, 0xFF)

	msg, err := newTestCodec().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "a", msg.Questions[0].Name)
}

func TestUdpCodec_DecodeMalformed(t *testing.T) {
	question := []byte{1, 'a', 0, 0, 1, 0, 1}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", header(1, 0, 0, 0, 0, 0)[:11]},
		{"question count not satisfied", header(1, 0, 2, 0, 0, 0)},
		{"truncated question type", append(header(1, 0, 1, 0, 0, 0), 1, 'a', 0, 0)},
		{"label past end", append(header(1, 0, 1, 0, 0, 0), 5, 'a', 'b')},
		{"forward pointer", append(header(1, 0, 1, 0, 0, 0), 0xC0, 14, 1, 'a', 0, 0, 1, 0, 1)},
		{"self pointer", append(header(1, 0, 1, 0, 0, 0), 0xC0, 12, 0, 1, 0, 1)},
		{"pointer loop", append(header(1, 0, 1, 0, 0, 0), 1, 'a', 0xC0, 12, 0, 1, 0, 1)},
		{"truncated pointer", append(header(1, 0, 1, 0, 0, 0), 0xC0)},
		{"reserved 0x40 label", append(header(1, 0, 1, 0, 0, 0), 0x41, 'a', 0, 0, 1, 0, 1)},
		{"reserved 0x80 label", append(header(1, 0, 1, 0, 0, 0), 0x81, 'a', 0, 0, 1, 0, 1)},
		{"answer count not satisfied", append(header(1, 0x8000, 1, 1, 0, 0), question...)},
		{"truncated record header", append(append(header(1, 0x8000, 1, 1, 0, 0), question...), 0xC0, 12, 0, 1)},
		{"rdlength past end", append(append(header(1, 0x8000, 1, 1, 0, 0), question...),
			0xC0, 12, 0, 1, 0, 1, 0, 0, 0, 60, 0, 4, 192, 0)},
		{"embedded name leaves rdata", append(append(header(1, 0x8000, 1, 1, 0, 0), question...),
			0xC0, 12, 0, 5, 0, 1, 0, 0, 0, 60, 0, 2, 3, 'w', 'w', 'w', 0)},
		{"bytes after embedded name", append(append(header(1, 0x8000, 1, 1, 0, 0), question...),
			0xC0, 12, 0, 5, 0, 1, 0, 0, 0, 60, 0, 3, 0xC0, 12, 0xAA)},
		{"short soa", append(append(header(1, 0x8000, 1, 1, 0, 0), question...),
			0xC0, 12, 0, 6, 0, 1, 0, 0, 0, 60, 0, 4, 0, 0, 0, 1)},
	}

	c := newTestCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.data)
			assert.ErrorIs(t, err, domain.ErrMalformedMessage)
		})
	}
}

func TestUdpCodec_DecodeNameTooLong(t *testing.T) {
	data := header(1, 0, 1, 0, 0, 0)
	for i := 0; i < 5; i++ {
		data = append(data, 63)
		for j := 0; j < 63; j++ {
			data = append(data, 'a')
		}
	}
	data = append(data, 0, 0, 1, 0, 1)

	_, err := newTestCodec().Decode(data)
	assert.ErrorIs(t, err, domain.ErrMalformedMessage)
}

func TestUdpCodec_DecodeValidBackwardPointerInRData(t *testing.T) {
	// question www.example at 12, CNAME rdata = "cdn" + pointer to 16 ("example")
	data := header(9, 0x8180, 1, 1, 0, 0)
	data = append(data, 3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 0, 0, 1, 0, 1)
	data = append(data, 0xC0, 12, 0, 5, 0, 1, 0, 0, 0, 60, 0, 6, 3, 'c', 'd', 'n', 0xC0, 16)

	msg, err := newTestCodec().Decode(data)
	require.NoError(t, err)
	require.Len(t, msg.Answers, 1)
	assert.Equal(t, "www.example", msg.Answers[0].Name)
	assert.Equal(t, mustRData(t, domain.RRTypeCNAME, "cdn.example"), msg.Answers[0].Data)
}

func TestUdpCodec_DecodeCopiesRData(t *testing.T) {
	data := header(1, 0x8180, 0, 1, 0, 0)
	data = append(data, 1, 'a', 0, 0, 1, 0, 1, 0, 0, 0, 60, 0, 4, 10, 0, 0, 1)

	msg, err := newTestCodec().Decode(data)
	require.NoError(t, err)
	data[len(data)-1] = 99
	assert.Equal(t, []byte{10, 0, 0, 1}, msg.Answers[0].Data)
}

func TestUdpCodec_EncodeCountMismatch(t *testing.T) {
	msg := domain.Message{
		Header:    domain.Header{ID: 1, QDCount: 1, ANCount: 2},
		Questions: []domain.Question{{Name: "a", Type: domain.RRTypeA, Class: domain.RRClassIN}},
	}
	_, err := newTestCodec().Encode(msg)
	assert.ErrorIs(t, err, domain.ErrCountMismatch)

	_, err = newTestCodec().EncodeTruncated(msg)
	assert.ErrorIs(t, err, domain.ErrCountMismatch)
}

func TestUdpCodec_EncodeInvalidName(t *testing.T) {
	tests := []string{"bad..name", fmt.Sprintf("%064d.example", 0)}
	for _, name := range tests {
		msg := domain.Message{Questions: []domain.Question{{Name: name, Type: domain.RRTypeA, Class: domain.RRClassIN}}}
		msg.SyncCounts()
		_, err := newTestCodec().Encode(msg)
		assert.Error(t, err, name)
	}
}

func manyAnswers(n int) domain.Message {
	answers := make([]domain.ResourceRecord, n)
	for i := range answers {
		answers[i] = domain.ResourceRecord{
			Name: "www.example.com", Type: domain.RRTypeA, Class: domain.RRClassIN, TTL: 300,
			Data: []byte{192, 0, 2, byte(i)},
		}
	}
	return domain.NewReply(
		domain.Header{ID: 42},
		domain.Question{Name: "www.example.com", Type: domain.RRTypeA, Class: domain.RRClassIN},
		answers, false,
	)
}

func TestUdpCodec_EncodeOverflow(t *testing.T) {
	_, err := newTestCodec().Encode(manyAnswers(40))
	assert.ErrorIs(t, err, domain.ErrEncodeOverflow)
}

func TestUdpCodec_EncodeTruncated(t *testing.T) {
	c := newTestCodec()

	t.Run("fits unchanged", func(t *testing.T) {
		msg := manyAnswers(3)
		want, err := c.Encode(msg)
		require.NoError(t, err)
		got, err := c.EncodeTruncated(msg)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("drops tail answers and sets TC", func(t *testing.T) {
		msg := manyAnswers(40)
		b, err := c.EncodeTruncated(msg)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(b), domain.MaxUDPMessageSize)

		got, err := c.Decode(b)
		require.NoError(t, err)
		assert.True(t, got.Header.Truncated)
		// 12 header + 21 question, 31 bytes per answer
		assert.Len(t, got.Answers, 15)
		assert.Equal(t, msg.Answers[:15], got.Answers)
		assert.Len(t, msg.Answers, 40, "input must not be modified")
		assert.False(t, msg.Header.Truncated)
	})

	t.Run("drops additional after answers", func(t *testing.T) {
		msg := manyAnswers(1)
		for i := 0; i < 20; i++ {
			msg.Additional = append(msg.Additional, domain.ResourceRecord{
				Name: "glue.example.com", Type: domain.RRTypeAAAA, Class: domain.RRClassIN, TTL: 60, Data: make([]byte, 16),
			})
		}
		msg.SyncCounts()
		b, err := c.EncodeTruncated(msg)
		require.NoError(t, err)
		got, err := c.Decode(b)
		require.NoError(t, err)
		assert.True(t, got.Header.Truncated)
		assert.Empty(t, got.Answers)
		assert.NotEmpty(t, got.Additional)
	})
}
