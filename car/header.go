// Package car implements the varint-framed CAR v1 file format: a header
// followed by a sequence of length-prefixed blocks.
package car

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/bluesky-go/atproto/atperr"
)

// emptyRootsHeader is the fixed 17-byte canonical DAG-CBOR encoding of
// {"roots":[],"version":1}.
var emptyRootsHeader = []byte{
	0xa2, 0x65, 'r', 'o', 'o', 't', 's', 0x80,
	0x67, 'v', 'e', 'r', 's', 'i', 'o', 'n', 0x01,
}

// HeaderInfo is the decoded {version, roots} header. Roots are kept as
// opaque CID strings; the Reader does not need to resolve them to
// retrieve blocks.
type HeaderInfo struct {
	Version uint64
	Roots   []string
}

type headerWire struct {
	Version uint64   `cbor:"version"`
	Roots   []string `cbor:"roots"`
}

// DecodeHeader CBOR-decodes a CAR v1 header payload (the bytes after the
// length varint, before any block data).
func DecodeHeader(data []byte) (HeaderInfo, error) {
	var wire headerWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return HeaderInfo{}, atperr.RepositoryError("failed to decode CAR header: " + err.Error())
	}
	return HeaderInfo{Version: wire.Version, Roots: wire.Roots}, nil
}

// EncodeEmptyRootsHeader returns the canonical fixed header for an
// empty-roots CAR file.
func EncodeEmptyRootsHeader() []byte {
	out := make([]byte, len(emptyRootsHeader))
	copy(out, emptyRootsHeader)
	return out
}
