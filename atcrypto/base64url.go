package atcrypto

import "encoding/base64"

// Base64URLEncode encodes data as unpadded base64url, matching the encoding
// used throughout JOSE (JWK coordinates, JWS segments, DPoP thumbprints).
func Base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Base64URLDecode decodes unpadded base64url text. Padded input is also
// accepted since some producers in the wild emit it.
func Base64URLDecode(s string) ([]byte, error) {
	if n := len(s) % 4; n != 0 {
		return base64.RawURLEncoding.DecodeString(s)
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return base64.RawURLEncoding.DecodeString(s)
	}
	return b, nil
}
