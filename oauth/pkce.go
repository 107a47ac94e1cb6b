package oauth

import "github.com/bluesky-go/atproto/atcrypto"

// PKCE holds the verifier/challenge pair for one authorization attempt.
// The verifier is always 32 bytes of entropy, base64url encoded (43
// characters), the low end of RFC 7636's permitted 43-128 range.
type PKCE struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}

// GeneratePKCE produces a fresh PKCE pair using the S256 challenge method.
func GeneratePKCE() (PKCE, error) {
	verifierBytes, err := atcrypto.RandomBytes(32)
	if err != nil {
		return PKCE{}, err
	}
	verifier := atcrypto.Base64URLEncode(verifierBytes)

	challenge, err := ChallengeFromVerifier(verifier)
	if err != nil {
		return PKCE{}, err
	}

	return PKCE{
		CodeVerifier:        verifier,
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
	}, nil
}

// ChallengeFromVerifier computes the S256 PKCE challenge for an existing
// verifier string: base64url(SHA-256(ascii bytes of verifier)).
func ChallengeFromVerifier(verifier string) (string, error) {
	sum := atcrypto.SHA256([]byte(verifier))
	return atcrypto.Base64URLEncode(sum[:]), nil
}

// GenerateState produces a fresh 16-byte random state parameter,
// base64url encoded.
func GenerateState() (string, error) {
	b, err := atcrypto.RandomBytes(16)
	if err != nil {
		return "", err
	}
	return atcrypto.Base64URLEncode(b), nil
}
