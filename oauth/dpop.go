package oauth

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"

	"github.com/bluesky-go/atproto/atcrypto"
	"github.com/bluesky-go/atproto/atperr"
)

// DPoPManager owns a freshly generated P-256 key pair and mints a
// dpop+jwt compact proof for every outgoing request. The server nonce is
// serialized behind a mutex since it may be updated concurrently with
// proof generation.
type DPoPManager struct {
	mu         sync.Mutex
	privateKey atcrypto.PrivateKey
	publicKey  atcrypto.PublicKey
	nonce      string

	now func() time.Time
}

// NewDPoPManager generates a fresh P-256 key pair and returns a manager
// bound to it.
func NewDPoPManager() (*DPoPManager, error) {
	sk, pk, err := atcrypto.GenerateP256Keypair()
	if err != nil {
		return nil, err
	}
	return &DPoPManager{privateKey: sk, publicKey: pk, now: time.Now}, nil
}

// Proof generates a fresh DPoP proof JWT for an HTTP request with the
// given method and URL. accessToken, when non-empty, is hashed into the
// "ath" claim binding the proof to a particular access token (used when
// DPoP-authenticating an XRPC call rather than a token/PAR exchange).
func (m *DPoPManager) Proof(ctx context.Context, method, rawURL, accessToken string) (string, error) {
	m.mu.Lock()
	nonce := m.nonce
	sk := m.privateKey
	m.mu.Unlock()

	htu, err := stripQueryAndFragment(rawURL)
	if err != nil {
		return "", atperr.InvalidURL(err)
	}

	pubJWK, err := atcrypto.JWKFromPublicKey(m.publicKey)
	if err != nil {
		return "", err
	}
	ecKey, err := atcrypto.ECDSAPrivateKey(sk)
	if err != nil {
		return "", err
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: ecKey}, &jose.SignerOptions{
		ExtraHeaders: map[jose.HeaderKey]interface{}{
			jose.HeaderType: "dpop+jwt",
			"jwk":           pubJWK,
		},
	})
	if err != nil {
		return "", atperr.CryptoError("failed to construct DPoP signer: " + err.Error())
	}

	payload := map[string]interface{}{
		"jti": uuid.New().String(),
		"htm": upperMethod(method),
		"htu": htu,
		"iat": m.nowFunc().Unix(),
	}
	if nonce != "" {
		payload["nonce"] = nonce
	}
	if accessToken != "" {
		sum := atcrypto.SHA256([]byte(accessToken))
		payload["ath"] = atcrypto.Base64URLEncode(sum[:])
	}
	payloadJSON, err := marshalSorted(payload)
	if err != nil {
		return "", atperr.EncodingError("failed to encode DPoP payload: " + err.Error())
	}

	jws, err := signer.Sign(payloadJSON)
	if err != nil {
		return "", atperr.CryptoError("failed to sign DPoP proof: " + err.Error())
	}

	return jws.CompactSerialize()
}

// UpdateNonce stores a server-provided DPoP-Nonce value for inclusion in
// subsequent proofs. A later call with a different value replaces it
// wholesale; only the latest nonce survives.
func (m *DPoPManager) UpdateNonce(nonce string) {
	m.mu.Lock()
	m.nonce = nonce
	m.mu.Unlock()
}

// Thumbprint returns the RFC 7638 thumbprint of the manager's public key,
// the "jkt" confirmation value a resource server binds tokens to.
func (m *DPoPManager) Thumbprint() (string, error) {
	return atcrypto.Thumbprint(m.publicKey)
}

func (m *DPoPManager) nowFunc() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func stripQueryAndFragment(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func upperMethod(method string) string {
	out := make([]byte, len(method))
	for i := 0; i < len(method); i++ {
		c := method[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// marshalSorted encodes v with lexicographically sorted keys. Go's
// encoding/json already sorts map[string]interface{} keys, so a plain
// json.Marshal over a map gives the canonical ordering.
func marshalSorted(v map[string]interface{}) ([]byte, error) {
	return json.Marshal(v)
}
