package domain

// MaxUDPMessageSize is the RFC 1035 limit for a DNS message carried over UDP.
const MaxUDPMessageSize = 512

// HeaderSize is the fixed size of a DNS header on the wire.
const HeaderSize = 12

// Opcode values from RFC 1035 section 4.1.1.
const (
	OpcodeQuery  uint8 = 0
	OpcodeIQuery uint8 = 1
	OpcodeStatus uint8 = 2
)

// Header is the fixed 12-byte DNS message header with its flag word
// unpacked into fields.
type Header struct {
	ID                 uint16
	Response           bool  // QR
	Opcode             uint8 // 4 bits
	Authoritative      bool  // AA
	Truncated          bool  // TC
	RecursionDesired   bool  // RD
	RecursionAvailable bool  // RA
	Zero               uint8 // Z, 3 bits, carried through
	RCode              RCode // 4 bits

	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

const (
	flagQR = 1 << 15
	flagAA = 1 << 10
	flagTC = 1 << 9
	flagRD = 1 << 8
	flagRA = 1 << 7
)

// Flags packs the flag fields into the 16-bit wire representation.
func (h Header) Flags() uint16 {
	var f uint16
	if h.Response {
		f |= flagQR
	}
	f |= uint16(h.Opcode&0x0F) << 11
	if h.Authoritative {
		f |= flagAA
	}
	if h.Truncated {
		f |= flagTC
	}
	if h.RecursionDesired {
		f |= flagRD
	}
	if h.RecursionAvailable {
		f |= flagRA
	}
	f |= uint16(h.Zero&0x07) << 4
	f |= uint16(h.RCode & 0x0F)
	return f
}

// SetFlags unpacks a 16-bit wire flag word into h.
func (h *Header) SetFlags(f uint16) {
	h.Response = f&flagQR != 0
	h.Opcode = uint8(f>>11) & 0x0F
	h.Authoritative = f&flagAA != 0
	h.Truncated = f&flagTC != 0
	h.RecursionDesired = f&flagRD != 0
	h.RecursionAvailable = f&flagRA != 0
	h.Zero = uint8(f>>4) & 0x07
	h.RCode = RCode(f & 0x0F)
}

// IsQuery reports QR=0.
func (h Header) IsQuery() bool {
	return !h.Response
}
