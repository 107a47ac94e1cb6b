package atcrypto

import (
	"encoding/asn1"
	"math/big"

	"github.com/bluesky-go/atproto/atperr"
)

type ecdsaSignature struct {
	R, S *big.Int
}

// DERToRaw converts a DER-encoded ECDSA signature to the fixed-width raw
// R||S encoding ES256 JWS compact serialization requires (32 bytes each
// for P-256).
func DERToRaw(der []byte) ([]byte, error) {
	var sig ecdsaSignature
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return nil, atperr.CryptoError("failed to parse DER signature: " + err.Error())
	}

	raw := make([]byte, 64)
	sig.R.FillBytes(raw[:32])
	sig.S.FillBytes(raw[32:])
	return raw, nil
}

// RawToDER converts a fixed-width 64-byte R||S signature to DER.
func RawToDER(raw []byte) ([]byte, error) {
	if len(raw) != 64 {
		return nil, atperr.CryptoError("raw ECDSA signature must be 64 bytes")
	}
	sig := ecdsaSignature{
		R: new(big.Int).SetBytes(raw[:32]),
		S: new(big.Int).SetBytes(raw[32:]),
	}
	der, err := asn1.Marshal(sig)
	if err != nil {
		return nil, atperr.CryptoError("failed to encode DER signature: " + err.Error())
	}
	return der, nil
}

// SignRaw signs data and returns the raw R||S encoding directly, the form
// needed for a JWS/DPoP compact signature segment.
func SignRaw(data []byte, sk PrivateKey) ([]byte, error) {
	der, err := Sign(data, sk)
	if err != nil {
		return nil, err
	}
	return DERToRaw(der)
}

// VerifyRaw verifies a raw R||S signature against pk.
func VerifyRaw(rawSignature, data []byte, pk PublicKey) bool {
	der, err := RawToDER(rawSignature)
	if err != nil {
		return false
	}
	return Verify(der, data, pk)
}
