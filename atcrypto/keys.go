// Package atcrypto implements the cryptographic primitives this module
// needs: P-256 keypairs, ES256 sign/verify, SHA-256, JWK encoding and
// RFC 7638 thumbprints, multikey (multicodec + base58btc) encoding, and
// base64url.
package atcrypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/bluesky-go/atproto/atperr"
)

// PrivateKey is a raw 32-byte P-256 scalar.
type PrivateKey [32]byte

// PublicKey is a compressed 33-byte P-256 point.
type PublicKey [33]byte

// GenerateP256Keypair generates a fresh P-256 key pair.
func GenerateP256Keypair() (PrivateKey, PublicKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return PrivateKey{}, PublicKey{}, atperr.CryptoError("failed to generate P-256 key: " + err.Error())
	}

	var sk PrivateKey
	priv.D.FillBytes(sk[:])

	pk := compressPoint(priv.PublicKey.X, priv.PublicKey.Y)
	return sk, pk, nil
}

// ECDSAPrivateKey returns sk as a *ecdsa.PrivateKey, the form go-jose's
// Signer needs to produce a JWS over a DPoP proof.
func ECDSAPrivateKey(sk PrivateKey) (*ecdsa.PrivateKey, error) {
	return parsePrivateKey(sk)
}

// PublicKeyFromPrivate derives the compressed public key for sk.
func PublicKeyFromPrivate(sk PrivateKey) (PublicKey, error) {
	priv, err := parsePrivateKey(sk)
	if err != nil {
		return PublicKey{}, err
	}
	return compressPoint(priv.PublicKey.X, priv.PublicKey.Y), nil
}

func compressPoint(x, y *big.Int) PublicKey {
	var pk PublicKey
	if y.Bit(0) == 0 {
		pk[0] = 0x02
	} else {
		pk[0] = 0x03
	}
	x.FillBytes(pk[1:])
	return pk
}

func parsePrivateKey(sk PrivateKey) (*ecdsa.PrivateKey, error) {
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(sk[:])
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, atperr.CryptoError("private key is not a valid P-256 scalar")
	}

	priv := new(ecdsa.PrivateKey)
	priv.D = d
	priv.PublicKey.Curve = curve
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(sk[:])
	return priv, nil
}

func parsePublicKey(pk PublicKey) (*ecdsa.PublicKey, error) {
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), pk[:])
	if x == nil {
		return nil, atperr.CryptoError("invalid compressed P-256 public key")
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}

// Sign produces a DER-encoded ECDSA signature over SHA-256(data) using sk.
func Sign(data []byte, sk PrivateKey) ([]byte, error) {
	priv, err := parsePrivateKey(sk)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, atperr.CryptoError("signing failed: " + err.Error())
	}
	return sig, nil
}

// Verify checks a DER-encoded ECDSA signature over SHA-256(data) against pk.
func Verify(signature, data []byte, pk PublicKey) bool {
	pub, err := parsePublicKey(pk)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(data)
	return ecdsa.VerifyASN1(pub, digest[:], signature)
}

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	got, err := rand.Read(b)
	if err != nil {
		return nil, atperr.CryptoError("failed to read random bytes: " + err.Error())
	}
	if got != n {
		return nil, atperr.CryptoError("unable to generate enough random data")
	}
	return b, nil
}
