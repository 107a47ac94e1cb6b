package atid

import (
	"encoding/json"
	"time"

	"github.com/bluesky-go/atproto/atperr"
)

const tidAlphabet = "234567abcdefghijklmnopqrstuvwxyz"
const tidLength = 13

// TID is a 13-character sortable base32 timestamp identifier packing
// (timestamp_us << 10) | (clock_id & 0x3FF) into 64 bits.
type TID struct {
	packed uint64
}

var tidCharIndex = func() map[byte]uint64 {
	m := make(map[byte]uint64, len(tidAlphabet))
	for i := 0; i < len(tidAlphabet); i++ {
		m[tidAlphabet[i]] = uint64(i)
	}
	return m
}()

// NewTID packs a microsecond timestamp and clock id into a TID. clockID is
// masked to its low 10 bits.
func NewTID(timestampMicros uint64, clockID uint16) TID {
	return TID{packed: (timestampMicros << 10) | uint64(clockID&0x3FF)}
}

// NowTID returns a TID for the current time with the given clock id.
func NowTID(clockID uint16) TID {
	return NewTID(uint64(time.Now().UnixMicro()), clockID)
}

// FromPacked builds a TID directly from its packed 64-bit representation.
func FromPacked(packed uint64) TID { return TID{packed: packed} }

// ParseTID validates and decodes a 13-character sortable base32 string.
func ParseTID(s string) (TID, bool) {
	if len(s) != tidLength {
		return TID{}, false
	}

	var packed uint64
	for i := 0; i < tidLength; i++ {
		idx, ok := tidCharIndex[s[i]]
		if !ok {
			return TID{}, false
		}
		if i == 0 && idx >= 16 {
			return TID{}, false
		}
		shift := uint(60 - 5*i)
		packed |= idx << shift
	}

	return TID{packed: packed}, true
}

func MustParseTID(s string) TID {
	t, ok := ParseTID(s)
	if !ok {
		panic("atid: invalid TID: " + s)
	}
	return t
}

func (t TID) Packed() uint64 { return t.packed }

func (t TID) Timestamp() uint64 { return t.packed >> 10 }

func (t TID) ClockID() uint16 { return uint16(t.packed & 0x3FF) }

func (t TID) String() string {
	buf := make([]byte, tidLength)
	for i := 0; i < tidLength; i++ {
		shift := uint(60 - 5*i)
		idx := (t.packed >> shift) & 0x1F
		buf[i] = tidAlphabet[idx]
	}
	return string(buf)
}

func (t TID) IsZero() bool { return t.packed == 0 }

func (t TID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return atperr.DecodingError("tid", err.Error())
	}
	parsed, ok := ParseTID(s)
	if !ok {
		return atperr.InvalidTID(s)
	}
	*t = parsed
	return nil
}
