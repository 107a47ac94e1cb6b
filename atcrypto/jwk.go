package atcrypto

import (
	"crypto"

	josejwk "github.com/go-jose/go-jose/v4"

	"github.com/bluesky-go/atproto/atperr"
)

// PublicJWK returns the public key as a go-jose JSONWebKey, the richer
// type Thumbprint needs for its RFC 7638 computation.
func PublicJWK(pk PublicKey) (*josejwk.JSONWebKey, error) {
	pub, err := parsePublicKey(pk)
	if err != nil {
		return nil, err
	}
	return &josejwk.JSONWebKey{
		Key:       pub,
		Algorithm: "ES256",
		Use:       "sig",
	}, nil
}

// Thumbprint computes the RFC 7638 JWK thumbprint of pk's public key, used
// as the DPoP "jkt" confirmation value. It requires kty=="EC", the only
// key type this module issues.
func Thumbprint(pk PublicKey) (string, error) {
	jwk, err := PublicJWK(pk)
	if err != nil {
		return "", err
	}
	sum, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", atperr.CryptoError("failed to compute JWK thumbprint: " + err.Error())
	}
	return Base64URLEncode(sum), nil
}

// Coordinates returns the base64url (unpadded) x, y coordinates of pk's
// public point, the form used for the "x"/"y" members of a hand-built JWK
// map (e.g. a DPoP proof's header jwk, which must stay minimal rather than
// carry go-jose's full JSONWebKey field set).
func Coordinates(pk PublicKey) (x, y string, err error) {
	pub, err := parsePublicKey(pk)
	if err != nil {
		return "", "", err
	}
	xb := make([]byte, 32)
	yb := make([]byte, 32)
	pub.X.FillBytes(xb)
	pub.Y.FillBytes(yb)
	return Base64URLEncode(xb), Base64URLEncode(yb), nil
}

// PrivateJWKFields returns the public coordinates plus the base64url
// private scalar "d", the three coordinates a full private JWK needs.
func PrivateJWKFields(sk PrivateKey) (x, y, d string, err error) {
	pub, err := PublicKeyFromPrivate(sk)
	if err != nil {
		return "", "", "", err
	}
	x, y, err = Coordinates(pub)
	if err != nil {
		return "", "", "", err
	}
	return x, y, Base64URLEncode(sk[:]), nil
}

// JWK is the EC-flavored JSON Web Key: kty/crv/x/y plus the optional
// private scalar d and the descriptive kid/use/alg members. Unlike
// PublicJWK (which hands back go-jose's richer type for thumbprinting),
// JWK is the plain struct other components serialize directly onto the
// wire.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
	Kid string `json:"kid,omitempty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
}

// JWKFromPublicKey builds the public-only JWK for pk.
func JWKFromPublicKey(pk PublicKey) (JWK, error) {
	x, y, err := Coordinates(pk)
	if err != nil {
		return JWK{}, err
	}
	return JWK{Kty: "EC", Crv: "P-256", X: x, Y: y}, nil
}

// JWKFromPrivateKey builds the JWK for sk, including the private scalar d
// and alg="ES256".
func JWKFromPrivateKey(sk PrivateKey) (JWK, error) {
	x, y, d, err := PrivateJWKFields(sk)
	if err != nil {
		return JWK{}, err
	}
	return JWK{Kty: "EC", Crv: "P-256", X: x, Y: y, D: d, Alg: "ES256"}, nil
}
