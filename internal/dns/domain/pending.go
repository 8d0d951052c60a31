package domain

import (
	"net/netip"
	"time"
)

// PendingQuery remembers who asked a forwarded question so the upstream
// reply can be relayed back.
type PendingQuery struct {
	ID        uint16
	Question  Question
	Client    netip.AddrPort
	Forwarded time.Time
}
