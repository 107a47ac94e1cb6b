package car

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/ipfs/go-cid"

	"github.com/bluesky-go/atproto/atperr"
)

// Block is a single CAR block: its CID and raw byte payload.
type Block struct {
	CID  cid.Cid
	Data []byte
}

// Reader iterates the blocks of a CAR v1 byte stream: read the header
// varint length, skip that many bytes (the header CBOR is not required
// to retrieve blocks), then repeatedly read (varint length, CID, block
// bytes).
type Reader struct {
	r *bufio.Reader
}

// NewReader validates data is at least 2 bytes and returns a Reader
// positioned after the header.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < 2 {
		return nil, atperr.RepositoryError("car file too small")
	}

	br := bufio.NewReader(bytes.NewReader(data))
	headerLen, err := readUvarint(br)
	if err != nil {
		return nil, atperr.RepositoryError("failed to read CAR header length: " + err.Error())
	}
	if _, err := io.CopyN(io.Discard, br, int64(headerLen)); err != nil {
		return nil, atperr.RepositoryError("car file too small")
	}

	return &Reader{r: br}, nil
}

// Next returns the next block, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (Block, error) {
	blockLen, err := readUvarint(r.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Block{}, io.EOF
		}
		return Block{}, atperr.RepositoryError("failed to read block length: " + err.Error())
	}

	buf := make([]byte, blockLen)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return Block{}, atperr.RepositoryError("truncated block: " + err.Error())
	}

	n, c, err := cid.CidFromBytes(buf)
	if err != nil {
		return Block{}, atperr.RepositoryError("invalid block CID: " + err.Error())
	}

	return Block{CID: c, Data: buf[n:]}, nil
}

// ReadAll consumes the remainder of the stream and returns every block
// keyed by its CID string.
func (r *Reader) ReadAll() (map[string][]byte, error) {
	blocks := make(map[string][]byte)
	for {
		block, err := r.Next()
		if errors.Is(err, io.EOF) {
			return blocks, nil
		}
		if err != nil {
			return nil, err
		}
		blocks[block.CID.String()] = block.Data
	}
}
