package domain

import "fmt"

// RCode represents the 4-bit DNS response code.
type RCode uint8

const (
	NOERROR  RCode = 0
	FORMERR  RCode = 1
	SERVFAIL RCode = 2
	NXDOMAIN RCode = 3
	NOTIMP   RCode = 4
	REFUSED  RCode = 5
	YXDOMAIN RCode = 6
	YXRRSET  RCode = 7
	NXRRSET  RCode = 8
	NOTAUTH  RCode = 9
	NOTZONE  RCode = 10
)

var rcodeNames = [...]string{
	NOERROR:  "NOERROR",
	FORMERR:  "FORMERR",
	SERVFAIL: "SERVFAIL",
	NXDOMAIN: "NXDOMAIN",
	NOTIMP:   "NOTIMP",
	REFUSED:  "REFUSED",
	YXDOMAIN: "YXDOMAIN",
	YXRRSET:  "YXRRSET",
	NXRRSET:  "NXRRSET",
	NOTAUTH:  "NOTAUTH",
	NOTZONE:  "NOTZONE",
}

// IsValid returns true if the RCode is within the named response code range.
func (r RCode) IsValid() bool {
	return int(r) < len(rcodeNames)
}

func (r RCode) String() string {
	if r.IsValid() {
		return rcodeNames[r]
	}
	return fmt.Sprintf("UNKNOWN(%d)", r)
}

// ParseRCode converts a string name to an RCode value, defaulting to NOERROR.
func ParseRCode(s string) RCode {
	for i, name := range rcodeNames {
		if name == s {
			return RCode(i)
		}
	}
	return NOERROR
}
