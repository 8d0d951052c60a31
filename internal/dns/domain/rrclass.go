package domain

import (
	"fmt"
	"strings"
)

// RRClass represents a DNS class (usually IN for Internet).
type RRClass uint16

// DNS Resource Record Class constants
const (
	RRClassIN   RRClass = 1   // IN - Internet
	RRClassCH   RRClass = 3   // CH - Chaos
	RRClassHS   RRClass = 4   // HS - Hesiod
	RRClassNONE RRClass = 254 // NONE - No class
	RRClassANY  RRClass = 255 // ANY - Any class (query only)
)

var rrClassNames = map[RRClass]string{
	RRClassIN:   "IN",
	RRClassCH:   "CH",
	RRClassHS:   "HS",
	RRClassNONE: "NONE",
	RRClassANY:  "ANY",
}

// IsValid returns true if the RRClass is one of the named classes.
func (c RRClass) IsValid() bool {
	_, ok := rrClassNames[c]
	return ok
}

func (c RRClass) String() string {
	if name, ok := rrClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// ParseRRClass converts a class mnemonic (any case) to an RRClass, or 0.
func ParseRRClass(s string) RRClass {
	s = strings.ToUpper(strings.TrimSpace(s))
	for c, name := range rrClassNames {
		if name == s {
			return c
		}
	}
	return 0
}
