package atid

import (
	"encoding/json"
	"strings"

	"github.com/bluesky-go/atproto/atperr"
)

// ATURI is a validated at://<authority>[/<nsid>[/<rkey>]].
type ATURI struct {
	authorityDID    DID
	authorityHandle Handle
	authorityIsDID  bool

	collection    NSID
	hasCollection bool

	rkey    string
	hasRKey bool
}

// ParseATURI validates and parses an at://<authority>[/<nsid>[/<rkey>]]
// string. The authority must be a valid DID or handle; the collection,
// when present, must be a valid NSID.
func ParseATURI(s string) (ATURI, bool) {
	const prefix = "at://"
	if !strings.HasPrefix(s, prefix) {
		return ATURI{}, false
	}
	rest := s[len(prefix):]
	if rest == "" {
		return ATURI{}, false
	}

	var authorityStr, path string
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		authorityStr = rest[:idx]
		path = rest[idx+1:]
	} else {
		authorityStr = rest
	}
	if authorityStr == "" {
		return ATURI{}, false
	}

	u := ATURI{}
	if did, ok := ParseDID(authorityStr); ok {
		u.authorityDID = did
		u.authorityIsDID = true
	} else if handle, ok := ParseHandle(authorityStr); ok {
		u.authorityHandle = handle
	} else {
		return ATURI{}, false
	}

	if path == "" {
		return u, true
	}

	var collectionStr, rkey string
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		collectionStr = path[:idx]
		rkey = path[idx+1:]
	} else {
		collectionStr = path
	}

	nsid, ok := ParseNSID(collectionStr)
	if !ok {
		return ATURI{}, false
	}
	u.collection = nsid
	u.hasCollection = true

	if rkey != "" {
		u.rkey = rkey
		u.hasRKey = true
	}

	return u, true
}

func MustParseATURI(s string) ATURI {
	u, ok := ParseATURI(s)
	if !ok {
		panic("atid: invalid AT-URI: " + s)
	}
	return u
}

// NewATURIFromDID constructs an ATURI from typed parts, always producing a
// valid value (authority is already a validated DID).
func NewATURIFromDID(authority DID, collection *NSID, rkey string) ATURI {
	u := ATURI{authorityDID: authority, authorityIsDID: true}
	if collection != nil {
		u.collection = *collection
		u.hasCollection = true
		if rkey != "" {
			u.rkey = rkey
			u.hasRKey = true
		}
	}
	return u
}

func (u ATURI) AuthorityString() string {
	if u.authorityIsDID {
		return u.authorityDID.String()
	}
	return u.authorityHandle.String()
}

func (u ATURI) AuthorityDID() (DID, bool)       { return u.authorityDID, u.authorityIsDID }
func (u ATURI) AuthorityHandle() (Handle, bool) { return u.authorityHandle, !u.authorityIsDID }

func (u ATURI) Collection() (NSID, bool) { return u.collection, u.hasCollection }
func (u ATURI) RKey() (string, bool)     { return u.rkey, u.hasRKey }

func (u ATURI) String() string {
	var b strings.Builder
	b.WriteString("at://")
	b.WriteString(u.AuthorityString())
	if u.hasCollection {
		b.WriteByte('/')
		b.WriteString(u.collection.String())
		if u.hasRKey {
			b.WriteByte('/')
			b.WriteString(u.rkey)
		}
	}
	return b.String()
}

func (u ATURI) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *ATURI) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return atperr.DecodingError("at-uri", err.Error())
	}
	parsed, ok := ParseATURI(s)
	if !ok {
		return atperr.InvalidATURI(s)
	}
	*u = parsed
	return nil
}
