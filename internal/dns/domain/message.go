package domain

import "fmt"

// Message is a decoded DNS message. Authority and Additional are carried
// through but never interpreted by the resolver.
type Message struct {
	Header     Header
	Questions  []Question
	Answers    []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// SyncCounts sets the header counts from the section lengths.
func (m *Message) SyncCounts() {
	m.Header.QDCount = uint16(len(m.Questions))
	m.Header.ANCount = uint16(len(m.Answers))
	m.Header.NSCount = uint16(len(m.Authority))
	m.Header.ARCount = uint16(len(m.Additional))
}

// CheckCounts returns ErrCountMismatch when a header count disagrees with
// its section.
func (m Message) CheckCounts() error {
	h := m.Header
	switch {
	case int(h.QDCount) != len(m.Questions):
		return fmt.Errorf("%w: qdcount %d, questions %d", ErrCountMismatch, h.QDCount, len(m.Questions))
	case int(h.ANCount) != len(m.Answers):
		return fmt.Errorf("%w: ancount %d, answers %d", ErrCountMismatch, h.ANCount, len(m.Answers))
	case int(h.NSCount) != len(m.Authority):
		return fmt.Errorf("%w: nscount %d, authority %d", ErrCountMismatch, h.NSCount, len(m.Authority))
	case int(h.ARCount) != len(m.Additional):
		return fmt.Errorf("%w: arcount %d, additional %d", ErrCountMismatch, h.ARCount, len(m.Additional))
	}
	return nil
}

// FirstQuestion returns the first question, or ErrNoQuestion.
func (m Message) FirstQuestion() (Question, error) {
	if len(m.Questions) == 0 {
		return Question{}, ErrNoQuestion
	}
	return m.Questions[0], nil
}

// NewReply builds the response to query answering q with answers. The reply
// keeps the query ID and opcode, copies RD, sets RA and echoes q.
func NewReply(query Header, q Question, answers []ResourceRecord, authoritative bool) Message {
	m := Message{
		Header: Header{
			ID:                 query.ID,
			Response:           true,
			Opcode:             query.Opcode,
			Authoritative:      authoritative,
			RecursionDesired:   query.RecursionDesired,
			RecursionAvailable: true,
			RCode:              NOERROR,
		},
		Questions: []Question{q},
		Answers:   answers,
	}
	m.SyncCounts()
	return m
}
