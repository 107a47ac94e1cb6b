package car

import (
	"bytes"
	"sort"
)

// Write serializes blocks (keyed by a caller-chosen stable label) into a
// CAR v1 byte stream: the fixed canonical empty-roots header, then each
// block in ascending lexicographic order of its label. Note synthetic
// "block-N" labels sort lexicographically, not numerically ("block-10"
// before "block-2"); readers key blocks by CID, so label order carries
// no meaning beyond being stable.
func Write(blocks map[string]Block) []byte {
	labels := make([]string, 0, len(blocks))
	for label := range blocks {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var buf bytes.Buffer
	header := EncodeEmptyRootsHeader()
	buf.Write(writeUvarint(uint64(len(header))))
	buf.Write(header)

	for _, label := range labels {
		block := blocks[label]
		cidBytes := block.CID.Bytes()
		buf.Write(writeUvarint(uint64(len(cidBytes) + len(block.Data))))
		buf.Write(cidBytes)
		buf.Write(block.Data)
	}

	return buf.Bytes()
}
