package frame_test

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesky-go/atproto/frame"
)

func buildFrame(t *testing.T, op int, typ string, body interface{}) []byte {
	t.Helper()
	hdr := map[string]interface{}{"op": op}
	if typ != "" {
		hdr["t"] = typ
	}
	hdrBytes, err := cbor.Marshal(hdr)
	require.NoError(t, err)
	bodyBytes, err := cbor.Marshal(body)
	require.NoError(t, err)
	return append(hdrBytes, bodyBytes...)
}

func TestDecodeCommitFrame(t *testing.T) {
	data := buildFrame(t, 1, "#commit", map[string]interface{}{
		"seq":  int64(42),
		"repo": "did:plc:abc123",
		"rev":  "3jzfcijpj2z2a",
		"time": "2024-01-01T00:00:00Z",
		"ops": []map[string]interface{}{
			{"action": "create", "path": "app.bsky.feed.post/xyz"},
			{"action": "bogus", "path": "app.bsky.feed.like/abc"},
		},
	})

	ev, err := frame.Decode(data)
	require.NoError(t, err)
	require.NotNil(t, ev.Commit)
	assert.Equal(t, int64(42), ev.Commit.Seq)
	assert.Equal(t, "did:plc:abc123", ev.Commit.Repo)
	require.Len(t, ev.Commit.Ops, 2)
	assert.Equal(t, "create", ev.Commit.Ops[0].Action)
	assert.Equal(t, "app.bsky.feed.post", ev.Commit.Ops[0].Collection)
	assert.Equal(t, "xyz", ev.Commit.Ops[0].RKey)
	assert.Equal(t, "create", ev.Commit.Ops[1].Action, "unknown action defaults to create")
}

func TestDecodeIdentityFrame(t *testing.T) {
	data := buildFrame(t, 1, "#identity", map[string]interface{}{
		"seq": int64(7), "did": "did:plc:foo", "time": "2024-01-01T00:00:00Z", "handle": "alice.test",
	})
	ev, err := frame.Decode(data)
	require.NoError(t, err)
	require.NotNil(t, ev.Identity)
	assert.Equal(t, "alice.test", ev.Identity.Handle)
}

func TestDecodeAccountFrameDefaultsActiveTrue(t *testing.T) {
	data := buildFrame(t, 1, "#account", map[string]interface{}{
		"seq": int64(1), "did": "did:plc:foo", "time": "2024-01-01T00:00:00Z",
	})
	ev, err := frame.Decode(data)
	require.NoError(t, err)
	require.NotNil(t, ev.Account)
	assert.True(t, ev.Account.Active)
}

func TestDecodeUnknownTypeYieldsUnknownEvent(t *testing.T) {
	data := buildFrame(t, 1, "#somethingNew", map[string]interface{}{"foo": "bar"})
	ev, err := frame.Decode(data)
	require.NoError(t, err)
	require.NotNil(t, ev.Unknown)
	assert.Equal(t, "#somethingNew", ev.Unknown.Type)
	assert.Equal(t, data, ev.Unknown.RawFrame)
}

func TestDecodeFrameWithNoBodyFails(t *testing.T) {
	hdr := map[string]interface{}{"op": 1, "t": "#commit"}
	hdrBytes, err := cbor.Marshal(hdr)
	require.NoError(t, err)

	_, err = frame.Decode(hdrBytes)
	assert.ErrorContains(t, err, "no body")
}

func TestDecodeInfoFrame(t *testing.T) {
	data := buildFrame(t, 1, "#info", map[string]interface{}{"name": "OutdatedCursor", "message": "cursor too old"})
	ev, err := frame.Decode(data)
	require.NoError(t, err)
	require.NotNil(t, ev.Info)
	assert.Equal(t, "OutdatedCursor", ev.Info.Name)
}
