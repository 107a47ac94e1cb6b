// Package mst models the Merkle Search Tree the protocol uses for
// repository records: prefix-compressed key reconstruction, in-order
// walk, and point lookup. Read traversal only; no write/rebalance
// algorithm is implemented.
package mst

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"

	"github.com/bluesky-go/atproto/atperr"
)

// CIDLink decodes a DAG-CBOR tag-42 CID link (a byte string tagged 42,
// carrying a leading multibase-identity 0x00 byte ahead of the raw CID
// bytes).
type CIDLink struct {
	cid.Cid
}

func (c *CIDLink) UnmarshalCBOR(data []byte) error {
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

func (c CIDLink) MarshalCBOR() ([]byte, error) {
	content := append([]byte{0x00}, c.Cid.Bytes()...)
	return cbor.Marshal(cbor.RawTag{Number: 42, Content: mustMarshalBytes(content)})
}

func mustMarshalBytes(b []byte) []byte {
	out, err := cbor.Marshal(b)
	if err != nil {
		panic(err)
	}
	return out
}

// Entry is a single MSTEntry: a prefix-compressed key suffix, the value
// it points to, and the subtree to its right.
type Entry struct {
	PrefixLength int      `cbor:"p"`
	KeySuffix    []byte   `cbor:"k"`
	Value        CIDLink  `cbor:"v"`
	Right        *CIDLink `cbor:"t,omitempty"`
}

// Node is a single MST node: an optional left subtree and its ordered
// entries.
type Node struct {
	Left    *CIDLink `cbor:"l,omitempty"`
	Entries []Entry  `cbor:"e"`
}

// DecodeNode CBOR-decodes raw block bytes into a Node.
func DecodeNode(data []byte) (Node, error) {
	var node Node
	if err := cbor.Unmarshal(data, &node); err != nil {
		return Node{}, atperr.MSTError("failed to decode MST node: " + err.Error())
	}
	return node, nil
}

// ReconstructKey rebuilds the entry's full key given the key of the
// entry immediately before it in the node (or "" for the first entry):
// previous_key[0:prefix_length] ++ key_suffix_bytes. A prefix length
// longer than previousKey is clamped to its length.
func (e Entry) ReconstructKey(previousKey string) string {
	n := e.PrefixLength
	if n > len(previousKey) {
		n = len(previousKey)
	}
	prefix := ""
	if n > 0 {
		prefix = previousKey[:n]
	}
	return prefix + string(e.KeySuffix)
}
