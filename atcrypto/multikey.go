package atcrypto

import (
	"strings"

	"github.com/mr-tron/base58"

	"github.com/bluesky-go/atproto/atperr"
)

// MultikeyAlgorithm identifies which curve a decoded multikey prefix
// names.
type MultikeyAlgorithm int

const (
	AlgorithmUnknown MultikeyAlgorithm = iota
	AlgorithmP256
	AlgorithmSecp256k1
)

// p256MulticodecPrefix and secp256k1MulticodecPrefix are the two-byte
// multicodec prefixes recognized by this module's did:key/multikey
// decoder. This module only ever generates P-256
// multikeys; the secp256k1 prefix is recognized on decode only, since
// atproto repository signing keys may use either curve.
var (
	p256MulticodecPrefix      = [2]byte{0x80, 0x24}
	secp256k1MulticodecPrefix = [2]byte{0xe7, 0x01}
)

// EncodeMultikey encodes a compressed P-256 public key as a multikey
// string: a multicodec-prefixed byte string, base58btc-encoded with the
// 'z' multibase marker, as used for did:key and repo signing key
// identifiers.
func EncodeMultikey(pk PublicKey) string {
	buf := make([]byte, 0, 2+len(pk))
	buf = append(buf, p256MulticodecPrefix[:]...)
	buf = append(buf, pk[:]...)
	return "z" + base58.Encode(buf)
}

// DecodeMultikey parses a multikey string, optionally prefixed with
// "did:key:": strips the did:key: prefix if present,
// requires the 'z' multibase marker, base58btc-decodes the remainder,
// and matches the first two bytes against the known P-256/secp256k1
// prefixes. Unknown prefixes fail with KindUnsupportedAlgorithm.
func DecodeMultikey(s string) (MultikeyAlgorithm, []byte, error) {
	s = strings.TrimPrefix(s, "did:key:")
	if !strings.HasPrefix(s, "z") {
		return AlgorithmUnknown, nil, atperr.CryptoError("multikey is missing the 'z' multibase marker")
	}

	data, err := base58.Decode(s[1:])
	if err != nil {
		return AlgorithmUnknown, nil, atperr.CryptoError("invalid base58btc encoding: " + err.Error())
	}
	if len(data) < 2 {
		return AlgorithmUnknown, nil, atperr.CryptoError("multikey is too short to contain a multicodec prefix")
	}

	prefix := [2]byte{data[0], data[1]}
	rest := data[2:]

	switch prefix {
	case p256MulticodecPrefix:
		return AlgorithmP256, rest, nil
	case secp256k1MulticodecPrefix:
		return AlgorithmSecp256k1, rest, nil
	default:
		return AlgorithmUnknown, nil, atperr.UnsupportedAlgorithm("unknown multikey prefix")
	}
}

// DecodeP256Multikey is a convenience wrapper over DecodeMultikey for
// callers that only expect a P-256 key: it validates the algorithm and
// the compressed-point length, returning a usable PublicKey.
func DecodeP256Multikey(s string) (PublicKey, error) {
	alg, rest, err := DecodeMultikey(s)
	if err != nil {
		return PublicKey{}, err
	}
	if alg != AlgorithmP256 {
		return PublicKey{}, atperr.UnsupportedAlgorithm("multikey does not encode a P-256 key")
	}
	if len(rest) != 33 {
		return PublicKey{}, atperr.CryptoError("multikey does not contain a compressed P-256 point")
	}

	var pk PublicKey
	copy(pk[:], rest)
	if _, err := parsePublicKey(pk); err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}
