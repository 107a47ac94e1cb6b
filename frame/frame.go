// Package frame decodes the CBOR-framed messages carried on the
// repository event stream: two concatenated CBOR items, a header map
// naming the message's type, then a body map shaped by that type.
package frame

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"

	"github.com/bluesky-go/atproto/atperr"
)

// cidLinkValue decodes a DAG-CBOR tag-42 CID link, the same encoding
// mst.CIDLink handles; duplicated here rather than imported to keep frame
// free of a dependency on mst's node-shape internals.
type cidLinkValue struct {
	cid.Cid
}

func (c *cidLinkValue) UnmarshalCBOR(data []byte) error {
	var raw cbor.RawTag
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	var content []byte
	if err := cbor.Unmarshal(raw.Content, &content); err != nil {
		return err
	}
	if len(content) > 0 && content[0] == 0x00 {
		content = content[1:]
	}
	parsed, err := cid.Cast(content)
	if err != nil {
		return err
	}
	c.Cid = parsed
	return nil
}

// header is the first of the two concatenated CBOR items in a frame.
type header struct {
	Op   int    `cbor:"op"`
	Type string `cbor:"t"`
}

// RepoOp is a single operation within a commit. Collection and RKey are
// derived from Path at decode time (the segments before and after the
// first slash).
type RepoOp struct {
	Action     string
	Path       string
	CID        string
	Collection string
	RKey       string
}

var repoOpActions = map[string]string{
	"create": "create",
	"update": "update",
	"delete": "delete",
}

type rawRepoOp struct {
	Action string          `cbor:"action"`
	Path   string          `cbor:"path"`
	CID    cbor.RawMessage `cbor:"cid"`
}

func (op rawRepoOp) toRepoOp() RepoOp {
	action, ok := repoOpActions[op.Action]
	if !ok {
		action = "create"
	}
	out := RepoOp{Action: action, Path: op.Path}
	if idx := indexOfSlash(op.Path); idx >= 0 {
		out.Collection = op.Path[:idx]
		out.RKey = op.Path[idx+1:]
	}
	if len(op.CID) > 0 {
		var linkCID cidLinkValue
		if err := cbor.Unmarshal(op.CID, &linkCID); err == nil {
			out.CID = linkCID.String()
		}
	}
	return out
}

func indexOfSlash(path string) int {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}

// CommitEvent corresponds to the `#commit` body shape.
type CommitEvent struct {
	Seq    int64
	TooBig bool
	Repo   string
	Rev    string
	Time   string
	Ops    []RepoOp
	Blocks []byte
}

type rawCommitBody struct {
	Seq    int64           `cbor:"seq"`
	TooBig bool            `cbor:"tooBig"`
	Repo   string          `cbor:"repo"`
	Rev    string          `cbor:"rev"`
	Time   string          `cbor:"time"`
	Ops    []rawRepoOp     `cbor:"ops"`
	Blocks cbor.RawMessage `cbor:"blocks"`
}

// IdentityEvent corresponds to the `#identity` body shape.
type IdentityEvent struct {
	Seq    int64  `cbor:"seq"`
	DID    string `cbor:"did"`
	Time   string `cbor:"time"`
	Handle string `cbor:"handle"`
}

// HandleEvent corresponds to the `#handle` body shape.
type HandleEvent struct {
	Seq    int64  `cbor:"seq"`
	DID    string `cbor:"did"`
	Handle string `cbor:"handle"`
	Time   string `cbor:"time"`
}

// AccountEvent corresponds to the `#account` body shape.
type AccountEvent struct {
	Seq    int64  `cbor:"seq"`
	DID    string `cbor:"did"`
	Time   string `cbor:"time"`
	Active bool   `cbor:"active"`
	Status string `cbor:"status"`
}

// InfoEvent corresponds to the `#info` body shape.
type InfoEvent struct {
	Name    string `cbor:"name"`
	Message string `cbor:"message"`
}

// UnknownEvent is yielded for any `t` value not in the type table.
type UnknownEvent struct {
	Type     string
	RawFrame []byte
}

// Event is the decoded result of a frame: exactly one of the Commit,
// Identity, Handle, Account, Info, or Unknown fields is non-nil/non-zero.
type Event struct {
	Commit   *CommitEvent
	Identity *IdentityEvent
	Handle   *HandleEvent
	Account  *AccountEvent
	Info     *InfoEvent
	Unknown  *UnknownEvent
}

// Decode parses a raw binary frame (two concatenated CBOR items) into an
// Event. Frames with no body bytes after the header fail with a
// frame-decoding error.
func Decode(data []byte) (Event, error) {
	var hdr header
	body, err := cbor.UnmarshalFirst(data, &hdr)
	if err != nil {
		return Event{}, atperr.FrameDecodingError("failed to decode frame header: " + err.Error())
	}
	if len(body) == 0 {
		return Event{}, atperr.FrameDecodingError("no body")
	}

	switch hdr.Type {
	case "#commit":
		var raw rawCommitBody
		if err := cbor.Unmarshal(body, &raw); err != nil {
			return Event{}, atperr.FrameDecodingError("failed to decode commit body: " + err.Error())
		}
		ops := make([]RepoOp, 0, len(raw.Ops))
		for _, op := range raw.Ops {
			ops = append(ops, op.toRepoOp())
		}
		return Event{Commit: &CommitEvent{
			Seq:    raw.Seq,
			TooBig: raw.TooBig,
			Repo:   raw.Repo,
			Rev:    raw.Rev,
			Time:   raw.Time,
			Ops:    ops,
			Blocks: []byte(raw.Blocks),
		}}, nil
	case "#identity":
		var ev IdentityEvent
		if err := cbor.Unmarshal(body, &ev); err != nil {
			return Event{}, atperr.FrameDecodingError("failed to decode identity body: " + err.Error())
		}
		return Event{Identity: &ev}, nil
	case "#handle":
		var ev HandleEvent
		if err := cbor.Unmarshal(body, &ev); err != nil {
			return Event{}, atperr.FrameDecodingError("failed to decode handle body: " + err.Error())
		}
		return Event{Handle: &ev}, nil
	case "#account":
		var raw struct {
			Seq    int64  `cbor:"seq"`
			DID    string `cbor:"did"`
			Time   string `cbor:"time"`
			Active *bool  `cbor:"active"`
			Status string `cbor:"status"`
		}
		if err := cbor.Unmarshal(body, &raw); err != nil {
			return Event{}, atperr.FrameDecodingError("failed to decode account body: " + err.Error())
		}
		active := true
		if raw.Active != nil {
			active = *raw.Active
		}
		return Event{Account: &AccountEvent{Seq: raw.Seq, DID: raw.DID, Time: raw.Time, Active: active, Status: raw.Status}}, nil
	case "#info":
		var ev InfoEvent
		if err := cbor.Unmarshal(body, &ev); err != nil {
			return Event{}, atperr.FrameDecodingError("failed to decode info body: " + err.Error())
		}
		return Event{Info: &ev}, nil
	default:
		return Event{Unknown: &UnknownEvent{Type: hdr.Type, RawFrame: append([]byte(nil), data...)}}, nil
	}
}
