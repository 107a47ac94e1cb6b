package atid_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesky-go/atproto/atid"
)

func TestParseDID(t *testing.T) {
	d, ok := atid.ParseDID("did:plc:z72i7hdynmk6r22z27h6tvur")
	require.True(t, ok)
	assert.Equal(t, "plc", d.Method())
	assert.Equal(t, "z72i7hdynmk6r22z27h6tvur", d.Identifier())
	assert.Equal(t, atid.DIDMethodPLC, d.MethodKind())
	assert.Equal(t, "did:plc:z72i7hdynmk6r22z27h6tvur", d.String())
}

func TestParseDIDWebWithColons(t *testing.T) {
	d, ok := atid.ParseDID("did:web:example.com:users:alice")
	require.True(t, ok)
	assert.Equal(t, "web", d.Method())
	assert.Equal(t, "example.com:users:alice", d.Identifier())
	assert.Equal(t, atid.DIDMethodWeb, d.MethodKind())
}

func TestParseDIDUnknownMethod(t *testing.T) {
	d, ok := atid.ParseDID("did:example:123")
	require.True(t, ok)
	assert.Equal(t, atid.DIDMethodOther, d.MethodKind())
}

func TestParseDIDRejects(t *testing.T) {
	cases := []string{
		"",
		"did:",
		"did:plc",
		"did::x",
		"did:plc:",
		"notadid:plc:x",
		"did:PLC:x",
	}
	for _, s := range cases {
		_, ok := atid.ParseDID(s)
		assert.Falsef(t, ok, "expected %q to be rejected", s)
	}
}

func TestDIDRoundTrip(t *testing.T) {
	d := atid.MustParseDID("did:plc:abc123")
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded atid.DID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, d, decoded)
}

func TestHandleNormalization(t *testing.T) {
	a, ok := atid.ParseHandle("Alice.Bsky.Social")
	require.True(t, ok)
	b, ok := atid.ParseHandle("alice.bsky.social")
	require.True(t, ok)
	assert.True(t, a.Equal(b))
	assert.Equal(t, "alice.bsky.social", a.String())
}

func TestHandleRejects(t *testing.T) {
	cases := []string{
		"",
		"nodots",
		"-leading.bsky.social",
		"trailing-.bsky.social",
		"alice..bsky.social",
		"alice.123",
		"has space.bsky.social",
	}
	for _, s := range cases {
		_, ok := atid.ParseHandle(s)
		assert.Falsef(t, ok, "expected %q to be rejected", s)
	}
}

func TestHandleTooLong(t *testing.T) {
	long := ""
	for i := 0; i < 254; i++ {
		long += "a"
	}
	_, ok := atid.ParseHandle(long + ".com")
	assert.False(t, ok)
}

func TestNSIDValid(t *testing.T) {
	n, ok := atid.ParseNSID("app.bsky.feed.post")
	require.True(t, ok)
	assert.Equal(t, "app.bsky.feed", n.Authority())
	assert.Equal(t, "post", n.Name())
}

func TestNSIDRejects(t *testing.T) {
	cases := []string{
		"",
		"a.b",                   // too few segments
		"1app.bsky.feed.post",   // authority starts with digit
		"app.bsky.feed.9post",   // name starts with digit
		"app.bsky.feed.po-st",   // hyphen in name
	}
	for _, s := range cases {
		_, ok := atid.ParseNSID(s)
		assert.Falsef(t, ok, "expected %q to be rejected", s)
	}
}

func TestATURIRoundTrip(t *testing.T) {
	did := atid.MustParseDID("did:plc:z72i7hdynmk6r22z27h6tvur")
	collection := atid.MustParseNSID("app.bsky.feed.post")
	u := atid.NewATURIFromDID(did, &collection, "3jwdwj2ctlk26")

	s := u.String()
	assert.Equal(t, "at://did:plc:z72i7hdynmk6r22z27h6tvur/app.bsky.feed.post/3jwdwj2ctlk26", s)

	parsed, ok := atid.ParseATURI(s)
	require.True(t, ok)
	assert.Equal(t, u, parsed)
}

func TestATURIAuthorityOnly(t *testing.T) {
	u, ok := atid.ParseATURI("at://alice.bsky.social")
	require.True(t, ok)
	h, isHandle := u.AuthorityHandle()
	require.True(t, isHandle)
	assert.Equal(t, "alice.bsky.social", h.String())
	_, hasCollection := u.Collection()
	assert.False(t, hasCollection)
}

func TestATURIRejects(t *testing.T) {
	cases := []string{
		"",
		"at://",
		"http://example.com",
		"at://did:plc:abc/not..valid",
	}
	for _, s := range cases {
		_, ok := atid.ParseATURI(s)
		assert.Falsef(t, ok, "expected %q to be rejected", s)
	}
}

func TestTIDBijective(t *testing.T) {
	tid := atid.NewTID(1_700_000_000_000_000, 42)
	s := tid.String()
	assert.Len(t, s, 13)

	parsed, ok := atid.ParseTID(s)
	require.True(t, ok)
	assert.Equal(t, tid.Packed(), parsed.Packed())
	assert.Equal(t, uint64(1_700_000_000_000_000), parsed.Timestamp())
	assert.Equal(t, uint16(42), parsed.ClockID())
}

func TestTIDClockIDMasked(t *testing.T) {
	tid := atid.NewTID(1000, 0xFFFF)
	assert.Equal(t, uint16(0xFFFF&0x3FF), tid.ClockID())
}

func TestTIDOrdering(t *testing.T) {
	a := atid.NewTID(1000, 1)
	b := atid.NewTID(2000, 1)
	assert.True(t, a.String() < b.String())
	assert.True(t, a.Packed() < b.Packed())
}

func TestTIDFirstCharBounded(t *testing.T) {
	// Max representable 64-bit value: first char index must be < 16.
	tid := atid.FromPacked(^uint64(0))
	s := tid.String()
	first := s[0]
	idx := -1
	for i, c := range "234567abcdefghijklmnopqrstuvwxyz" {
		if byte(c) == first {
			idx = i
			break
		}
	}
	assert.Less(t, idx, 16)
}

func TestTIDRejectsWrongLength(t *testing.T) {
	_, ok := atid.ParseTID("short")
	assert.False(t, ok)
}

func TestTIDRejectsInvalidFirstChar(t *testing.T) {
	// 'z' has index 31 >= 16, so it cannot be the first character.
	_, ok := atid.ParseTID("zzzzzzzzzzzzz")
	assert.False(t, ok)
}

func TestCIDLinkRoundTrip(t *testing.T) {
	link, ok := atid.NewCIDLink("bafyreigyzrp54ypvhcrqdqxzhvwgv5xvfdijz2lxpaigo5gtoqfuhtntzm")
	require.True(t, ok)

	data, err := json.Marshal(link)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"$link"`)

	var decoded atid.CIDLink
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, link, decoded)
}

func TestCIDLinkDecodesBareString(t *testing.T) {
	var decoded atid.CIDLink
	require.NoError(t, json.Unmarshal([]byte(`"bafyabc"`), &decoded))
	assert.Equal(t, "bafyabc", decoded.String())
}

func TestBlobRefRoundTrip(t *testing.T) {
	link, _ := atid.NewCIDLink("bafyabc")
	b := atid.BlobRef{Ref: link, MimeType: "image/jpeg", Size: 1024}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"$type":"blob"`)

	var decoded atid.BlobRef
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)
}

func TestBlobRefRejectsWrongType(t *testing.T) {
	var decoded atid.BlobRef
	err := json.Unmarshal([]byte(`{"$type":"not-blob","ref":"bafyabc","mimeType":"x","size":1}`), &decoded)
	assert.Error(t, err)
}

func TestTIDKnownLiteralRoundTrips(t *testing.T) {
	tid := atid.MustParseTID("3jzfcijpj2z2a")
	assert.Equal(t, "3jzfcijpj2z2a", tid.String())

	reparsed, ok := atid.ParseTID(tid.String())
	require.True(t, ok)
	assert.Equal(t, tid.Packed(), reparsed.Packed())
}
