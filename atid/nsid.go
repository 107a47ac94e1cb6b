package atid

import (
	"encoding/json"
	"strings"

	"github.com/bluesky-go/atproto/atperr"
)

// NSID is a validated reverse-domain namespaced identifier.
type NSID struct {
	raw string
}

// ParseNSID validates s.
func ParseNSID(s string) (NSID, bool) {
	if len(s) > 317 {
		return NSID{}, false
	}
	segments := strings.Split(s, ".")
	if len(segments) < 3 {
		return NSID{}, false
	}

	authority := segments[:len(segments)-1]
	name := segments[len(segments)-1]

	for _, seg := range authority {
		if !validAuthoritySegment(seg) {
			return NSID{}, false
		}
	}
	if !validNameSegment(name) {
		return NSID{}, false
	}

	return NSID{raw: s}, true
}

func MustParseNSID(s string) NSID {
	n, ok := ParseNSID(s)
	if !ok {
		panic("atid: invalid NSID: " + s)
	}
	return n
}

func validAuthoritySegment(seg string) bool {
	if len(seg) == 0 || len(seg) > 63 {
		return false
	}
	if !isASCIILetter(rune(seg[0])) {
		return false
	}
	for _, r := range seg {
		switch {
		case isASCIILetter(r):
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

func validNameSegment(seg string) bool {
	if len(seg) == 0 || len(seg) > 63 {
		return false
	}
	if !isASCIILetter(rune(seg[0])) {
		return false
	}
	for _, r := range seg {
		switch {
		case isASCIILetter(r):
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (n NSID) String() string { return n.raw }
func (n NSID) IsZero() bool   { return n.raw == "" }

// Authority returns the dot-joined segments before the terminal name.
func (n NSID) Authority() string {
	idx := strings.LastIndexByte(n.raw, '.')
	return n.raw[:idx]
}

// Name returns the terminal segment.
func (n NSID) Name() string {
	idx := strings.LastIndexByte(n.raw, '.')
	return n.raw[idx+1:]
}

func (n NSID) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.raw)
}

func (n *NSID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return atperr.DecodingError("nsid", err.Error())
	}
	parsed, ok := ParseNSID(s)
	if !ok {
		return atperr.InvalidNSID(s)
	}
	*n = parsed
	return nil
}
