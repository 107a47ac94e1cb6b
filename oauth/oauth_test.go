package oauth_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesky-go/atproto/atperr"
	"github.com/bluesky-go/atproto/oauth"
)

type fakeHTTP struct {
	fn func(req *http.Request) (*http.Response, error)
}

func (f fakeHTTP) Do(req *http.Request) (*http.Response, error) { return f.fn(req) }

func jsonResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: header}
}

// TestPKCEChallengeMatchesRFC7636Vector asserts the exact RFC 7636
// Appendix B test vector.
func TestPKCEChallengeMatchesRFC7636Vector(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge, err := oauth.ChallengeFromVerifier(verifier)
	require.NoError(t, err)
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", challenge)
}

func TestGeneratePKCEVerifierLengthAndAlphabet(t *testing.T) {
	pkce, err := oauth.GeneratePKCE()
	require.NoError(t, err)
	assert.Len(t, pkce.CodeVerifier, 43)
	assert.NotContains(t, pkce.CodeVerifier, "+")
	assert.NotContains(t, pkce.CodeVerifier, "/")
	assert.NotContains(t, pkce.CodeVerifier, "=")
	assert.Equal(t, "S256", pkce.CodeChallengeMethod)
}

func TestDPoPProofHasExpectedClaims(t *testing.T) {
	mgr, err := oauth.NewDPoPManager()
	require.NoError(t, err)

	proof, err := mgr.Proof(context.Background(), "post", "https://example.com/token?x=1#frag", "")
	require.NoError(t, err)

	parts := strings.Split(proof, ".")
	require.Len(t, parts, 3)

	headerJSON := mustB64Decode(t, parts[0])
	var header map[string]interface{}
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	assert.Equal(t, "dpop+jwt", header["typ"])
	assert.Equal(t, "ES256", header["alg"])
	jwk := header["jwk"].(map[string]interface{})
	assert.Equal(t, "EC", jwk["kty"])
	assert.Equal(t, "P-256", jwk["crv"])
	assert.NotEmpty(t, jwk["x"])
	assert.NotEmpty(t, jwk["y"])
	assert.Len(t, jwk, 4, "proof's embedded jwk must stay minimal: kty/crv/x/y only")

	payloadJSON := mustB64Decode(t, parts[1])
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(payloadJSON, &payload))
	assert.Equal(t, "POST", payload["htm"])
	assert.Equal(t, "https://example.com/token", payload["htu"])
	assert.NotEmpty(t, payload["jti"])
}

func TestDPoPUpdateNonceKeepsOnlyLatest(t *testing.T) {
	mgr, err := oauth.NewDPoPManager()
	require.NoError(t, err)

	mgr.UpdateNonce("n1")
	mgr.UpdateNonce("n2")

	proof, err := mgr.Proof(context.Background(), "GET", "https://example.com/x", "")
	require.NoError(t, err)
	payloadJSON := mustB64Decode(t, strings.Split(proof, ".")[1])
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(payloadJSON, &payload))
	assert.Equal(t, "n2", payload["nonce"])
}

func mustB64Decode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.RawURLEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}

// TestAuthorizeRetriesOnceOnDPoPNonce: the PAR endpoint first rejects
// with a DPoP-Nonce challenge, then succeeds on retry with the nonce
// included in the proof.
func TestAuthorizeRetriesOnceOnDPoPNonce(t *testing.T) {
	var calls int32

	http1 := fakeHTTP{fn: func(req *http.Request) (*http.Response, error) {
		if strings.Contains(req.URL.Path, "oauth-authorization-server") {
			return jsonResponse(200, `{
				"issuer": "https://auth.example",
				"authorization_endpoint": "https://auth.example/authorize",
				"token_endpoint": "https://auth.example/token",
				"pushed_authorization_request_endpoint": "https://auth.example/par"
			}`, nil), nil
		}

		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			header := http.Header{}
			header.Set("DPoP-Nonce", "n1")
			return jsonResponse(400, `{"error":"use_dpop_nonce"}`, header), nil
		}

		body, _ := io.ReadAll(req.Body)
		assert.Contains(t, string(body), "client_id=")
		dpopHeader := req.Header.Get("DPoP")
		payloadJSON := mustB64Decode(t, strings.Split(dpopHeader, ".")[1])
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(payloadJSON, &payload))
		assert.Equal(t, "n1", payload["nonce"])

		return jsonResponse(200, `{"request_uri":"urn:ietf:params:oauth:request_uri:abc","expires_in":60}`, nil), nil
	}}

	client, err := oauth.NewClient(oauth.Config{ClientID: "https://app.example/client-metadata.json", RedirectURI: "https://app.example/callback", HTTPClient: http1})
	require.NoError(t, err)

	redirectURL, err := client.Authorize(context.Background(), "https://auth.example", "atproto")
	require.NoError(t, err)
	assert.Contains(t, redirectURL, "client_id=")
	assert.Contains(t, redirectURL, "request_uri=urn%3Aietf%3Aparams%3Aoauth%3Arequest_uri%3Aabc")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenManagerStoreTokensNormalizesExpiresAt(t *testing.T) {
	clock := clockwork.NewFakeClock()
	mgr := oauth.NewTokenManager(nil, "")
	mgr.Clock = clock

	expiresIn := int64(100)
	require.NoError(t, mgr.StoreTokens(oauth.TokenSet{AccessToken: "a", ExpiresIn: &expiresIn}))

	tokens, err := mgr.GetTokens()
	require.NoError(t, err)
	require.NotNil(t, tokens.ExpiresAt)
	assert.Equal(t, clock.Now().Unix()+100, *tokens.ExpiresAt)
}

func TestTokenManagerNeedsRefreshBoundary(t *testing.T) {
	clock := clockwork.NewFakeClock()
	mgr := oauth.NewTokenManager(nil, "")
	mgr.Clock = clock

	expiresAt := clock.Now().Unix() + 60
	require.NoError(t, mgr.StoreTokens(oauth.TokenSet{AccessToken: "a", ExpiresAt: &expiresAt}))

	assert.True(t, mgr.NeedsRefresh(), "boundary now+60s == expires_at must return true")
}

func TestTokenManagerNeedsRefreshWithNoTokens(t *testing.T) {
	mgr := oauth.NewTokenManager(nil, "")
	assert.True(t, mgr.NeedsRefresh())
	assert.True(t, mgr.IsExpired())
}

func TestClearTokensIsIdempotent(t *testing.T) {
	mgr := oauth.NewTokenManager(nil, "")
	require.NoError(t, mgr.ClearTokens())
	require.NoError(t, mgr.ClearTokens())
}

func TestGetSessionStates(t *testing.T) {
	client, err := oauth.NewClient(oauth.Config{ClientID: "c", RedirectURI: "r"})
	require.NoError(t, err)

	sess, err := client.GetSession()
	require.NoError(t, err)
	assert.Equal(t, oauth.SessionUnauthenticated, sess.State)
	assert.False(t, sess.IsAuthenticated())
}

func authFlowHTTP(t *testing.T, calls *[]string) fakeHTTP {
	t.Helper()
	return fakeHTTP{fn: func(req *http.Request) (*http.Response, error) {
		*calls = append(*calls, req.URL.Path)
		switch {
		case strings.Contains(req.URL.Path, "oauth-authorization-server"):
			return jsonResponse(200, `{
				"issuer": "https://auth.example",
				"authorization_endpoint": "https://auth.example/authorize",
				"token_endpoint": "https://auth.example/token",
				"pushed_authorization_request_endpoint": "https://auth.example/par"
			}`, nil), nil
		case strings.HasSuffix(req.URL.Path, "/par"):
			return jsonResponse(200, `{"request_uri":"urn:ietf:params:oauth:request_uri:abc","expires_in":60}`, nil), nil
		case strings.HasSuffix(req.URL.Path, "/token"):
			body, _ := io.ReadAll(req.Body)
			if strings.Contains(string(body), "grant_type=refresh_token") {
				return jsonResponse(200, `{"access_token":"at2","refresh_token":"rt2","token_type":"DPoP","expires_in":3600,"sub":"did:plc:user1"}`, nil), nil
			}
			return jsonResponse(200, `{"access_token":"at1","refresh_token":"rt1","token_type":"DPoP","expires_in":3600,"sub":"did:plc:user1"}`, nil), nil
		default:
			t.Fatalf("unexpected request to %s", req.URL.Path)
			return nil, nil
		}
	}}
}

func TestHandleCallbackExchangesCodeAndAuthenticates(t *testing.T) {
	var calls []string
	client, err := oauth.NewClient(oauth.Config{
		ClientID:    "https://app.example/client-metadata.json",
		RedirectURI: "https://app.example/callback",
		HTTPClient:  authFlowHTTP(t, &calls),
	})
	require.NoError(t, err)

	_, err = client.Authorize(context.Background(), "https://auth.example", "atproto")
	require.NoError(t, err)

	// The pending state parameter is exposed through the Authorizing
	// session variant.
	sess, err := client.GetSession()
	require.NoError(t, err)
	require.Equal(t, oauth.SessionAuthorizing, sess.State)
	state := sess.Stage
	require.NotEmpty(t, state)

	sess, err = client.HandleCallback(context.Background(), "https://app.example/callback?code=c1&state="+state)
	require.NoError(t, err)
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "did:plc:user1", sess.DID)

	tokens, err := client.TokenManager().GetTokens()
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.Equal(t, "at1", tokens.AccessToken)
	require.NotNil(t, tokens.ExpiresAt)

	// PKCE and state are cleared; a replayed callback no longer matches.
	_, err = client.HandleCallback(context.Background(), "https://app.example/callback?code=c1&state="+state)
	assert.Error(t, err)
}

func TestHandleCallbackRejectsMismatchedState(t *testing.T) {
	var calls []string
	client, err := oauth.NewClient(oauth.Config{
		ClientID:    "c",
		RedirectURI: "r",
		HTTPClient:  authFlowHTTP(t, &calls),
	})
	require.NoError(t, err)

	_, err = client.Authorize(context.Background(), "https://auth.example", "atproto")
	require.NoError(t, err)

	_, err = client.HandleCallback(context.Background(), "https://app.example/callback?code=c1&state=wrong")
	var aerr *atperr.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, atperr.KindOAuthError, aerr.Kind)
	assert.Equal(t, "invalid_state", aerr.OAuthErrorCode)
}

func TestHandleCallbackSurfacesServerError(t *testing.T) {
	client, err := oauth.NewClient(oauth.Config{ClientID: "c", RedirectURI: "r"})
	require.NoError(t, err)

	_, err = client.HandleCallback(context.Background(), "https://app.example/callback?error=access_denied&error_description=user+said+no")
	var aerr *atperr.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, atperr.KindOAuthError, aerr.Kind)
	assert.Equal(t, "access_denied", aerr.OAuthErrorCode)
	assert.Equal(t, "user said no", aerr.Message)
}

func TestRefreshTokensRotatesStoredSet(t *testing.T) {
	var calls []string
	client, err := oauth.NewClient(oauth.Config{
		ClientID:    "c",
		RedirectURI: "r",
		HTTPClient:  authFlowHTTP(t, &calls),
	})
	require.NoError(t, err)

	_, err = client.Authorize(context.Background(), "https://auth.example", "atproto")
	require.NoError(t, err)
	sess, err := client.GetSession()
	require.NoError(t, err)
	_, err = client.HandleCallback(context.Background(), "https://app.example/callback?code=c1&state="+sess.Stage)
	require.NoError(t, err)

	refreshed, err := client.RefreshTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at2", refreshed.AccessToken)

	tokens, err := client.TokenManager().GetTokens()
	require.NoError(t, err)
	assert.Equal(t, "at2", tokens.AccessToken)
	assert.Equal(t, "rt2", tokens.RefreshToken)
}

func TestRefreshTokensFailsWithoutRefreshToken(t *testing.T) {
	client, err := oauth.NewClient(oauth.Config{ClientID: "c", RedirectURI: "r"})
	require.NoError(t, err)

	require.NoError(t, client.TokenManager().StoreTokens(oauth.TokenSet{AccessToken: "a", Sub: "did:plc:x"}))

	_, err = client.RefreshTokens(context.Background())
	var aerr *atperr.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, atperr.KindTokenRefreshFailed, aerr.Kind)
}

type memStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStorage() *memStorage { return &memStorage{blobs: make(map[string][]byte)} }

func (s *memStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[key], nil
}

func (s *memStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = value
	return nil
}

func (s *memStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func TestTokenManagerColdLoadsFromStorage(t *testing.T) {
	storage := newMemStorage()

	warm := oauth.NewTokenManager(storage, "tokens")
	expiresIn := int64(3600)
	require.NoError(t, warm.StoreTokens(oauth.TokenSet{AccessToken: "a", Sub: "did:plc:x", ExpiresIn: &expiresIn}))

	cold := oauth.NewTokenManager(storage, "tokens")
	tokens, err := cold.GetTokens()
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.Equal(t, "a", tokens.AccessToken)
	assert.Equal(t, "did:plc:x", tokens.Sub)

	require.NoError(t, cold.ClearTokens())
	blob, err := storage.Get("tokens")
	require.NoError(t, err)
	assert.Empty(t, blob)
}
