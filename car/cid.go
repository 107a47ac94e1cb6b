package car

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// DeriveCID computes a multihash-based CIDv1 (raw codec, SHA-256) for
// data. Shared by the CAR writer and the MST block store so both are
// genuinely content-addressed.
func DeriveCID(data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}
