package atid

import (
	"encoding/json"
	"strings"

	"github.com/bluesky-go/atproto/atperr"
)

// Handle is a case-normalized domain-style identifier.
type Handle struct {
	normalized string
}

// ParseHandle validates and lowercase-normalizes s.
func ParseHandle(s string) (Handle, bool) {
	if len(s) == 0 || len(s) > 253 {
		return Handle{}, false
	}
	normalized := strings.ToLower(s)

	labels := strings.Split(normalized, ".")
	if len(labels) < 2 {
		return Handle{}, false
	}

	for _, label := range labels {
		if !validLabel(label) {
			return Handle{}, false
		}
	}

	tld := labels[len(labels)-1]
	if isAllDigits(tld) {
		return Handle{}, false
	}

	return Handle{normalized: normalized}, true
}

func MustParseHandle(s string) Handle {
	h, ok := ParseHandle(s)
	if !ok {
		panic("atid: invalid handle: " + s)
	}
	return h
}

func validLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (h Handle) String() string { return h.normalized }
func (h Handle) IsZero() bool   { return h.normalized == "" }

// Equal compares two handles on their normalized form.
func (h Handle) Equal(other Handle) bool { return h.normalized == other.normalized }

// TLD returns the final dot-separated label.
func (h Handle) TLD() string {
	labels := strings.Split(h.normalized, ".")
	return labels[len(labels)-1]
}

func (h Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.normalized)
}

func (h *Handle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return atperr.DecodingError("handle", err.Error())
	}
	parsed, ok := ParseHandle(s)
	if !ok {
		return atperr.InvalidHandle(s)
	}
	*h = parsed
	return nil
}
