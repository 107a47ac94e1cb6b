package atid

import (
	"encoding/json"
	"strings"

	"github.com/bluesky-go/atproto/atperr"
)

// DIDMethod classifies the method segment of a DID.
type DIDMethod int

const (
	DIDMethodOther DIDMethod = iota
	DIDMethodPLC
	DIDMethodWeb
	DIDMethodKey
)

// DID is a parsed, validated did:<method>:<identifier>.
type DID struct {
	method     string
	identifier string
}

// ParseDID validates and parses s, returning (zero, false) on any
// violation of the did:<method>:<identifier> grammar.
func ParseDID(s string) (DID, bool) {
	const prefix = "did:"
	if !strings.HasPrefix(s, prefix) {
		return DID{}, false
	}
	rest := s[len(prefix):]

	secondColon := strings.IndexByte(rest, ':')
	if secondColon < 0 {
		return DID{}, false
	}
	method := rest[:secondColon]
	identifier := rest[secondColon+1:]

	if method == "" || identifier == "" {
		return DID{}, false
	}
	for _, r := range method {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return DID{}, false
		}
	}

	return DID{method: method, identifier: identifier}, true
}

// MustParseDID panics if s is not a valid DID. Intended for literals in
// tests and constants, never for untrusted input.
func MustParseDID(s string) DID {
	d, ok := ParseDID(s)
	if !ok {
		panic("atid: invalid DID: " + s)
	}
	return d
}

func (d DID) Method() string     { return d.method }
func (d DID) Identifier() string { return d.identifier }

func (d DID) MethodKind() DIDMethod {
	switch d.method {
	case "plc":
		return DIDMethodPLC
	case "web":
		return DIDMethodWeb
	case "key":
		return DIDMethodKey
	default:
		return DIDMethodOther
	}
}

func (d DID) String() string {
	return "did:" + d.method + ":" + d.identifier
}

func (d DID) IsZero() bool { return d.method == "" }

func (d DID) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return atperr.DecodingError("did", err.Error())
	}
	parsed, ok := ParseDID(s)
	if !ok {
		return atperr.InvalidDID(s)
	}
	*d = parsed
	return nil
}
