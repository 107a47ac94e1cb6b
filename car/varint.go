package car

import (
	"io"

	"github.com/multiformats/go-varint"

	"github.com/bluesky-go/atproto/atperr"
)

// readUvarint reads an unsigned LEB128 varint one byte at a time from r
// (the length-prefix format CAR v1 uses for its header and every block),
// then hands the accumulated bytes to go-varint for the actual decode, the
// same codec multiformats/go-varint implements for multistream-select and
// go-car.
func readUvarint(r io.ByteReader) (uint64, error) {
	var buf []byte
	for i := 0; i < varint.MaxLenUvarint63; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		buf = append(buf, b)
		if b < 0x80 {
			v, _, err := varint.FromUvarint(buf)
			if err != nil {
				return 0, atperr.RepositoryError("invalid varint: " + err.Error())
			}
			return v, nil
		}
	}
	return 0, atperr.RepositoryError("varint exceeds maximum length")
}

// writeUvarint returns the unsigned LEB128 encoding of v.
func writeUvarint(v uint64) []byte {
	return varint.ToUvarint(v)
}
