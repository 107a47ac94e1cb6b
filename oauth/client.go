package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bluesky-go/atproto/atperr"
)

// Config is the construction-time configuration for a Client.
type Config struct {
	ClientID    string
	RedirectURI string
	HTTPClient  HTTPClient
	Storage     SecureStorage
	StorageKey  string
}

// Client drives the OAuth 2.1 + DPoP + PAR + PKCE authorization flow
// against a single authorization server.
type Client struct {
	cfg       Config
	http      HTTPClient
	discovery *ServerDiscovery
	dpop      dpopProofer
	tokens    *TokenManager

	mu         sync.Mutex
	pkce       *PKCE
	state      string
	authServer ServerMetadata
}

// NewClient constructs a Client. A fresh DPoP key pair is generated for
// the lifetime of the client.
func NewClient(cfg Config) (*Client, error) {
	dpop, err := NewDPoPManager()
	if err != nil {
		return nil, err
	}
	httpClient := defaultClient(cfg.HTTPClient)
	return &Client{
		cfg:       cfg,
		http:      httpClient,
		discovery: NewServerDiscovery(httpClient),
		dpop:      dpop,
		tokens:    NewTokenManager(cfg.Storage, cfg.StorageKey),
	}, nil
}

// Authorize discovers the authorization server's metadata, generates PKCE
// and state, pushes the authorization request (with DPoP nonce retry),
// and returns the URL the end user should be redirected to.
func (c *Client) Authorize(ctx context.Context, authServerURL, scope string) (string, error) {
	meta, err := c.discovery.Discover(ctx, authServerURL)
	if err != nil {
		return "", err
	}
	if meta.PushedAuthorizationRequestURL == "" {
		return "", atperr.OAuthError("invalid_request", "authorization server does not advertise a pushed_authorization_request_endpoint", "")
	}

	pkce, err := GeneratePKCE()
	if err != nil {
		return "", err
	}
	state, err := GenerateState()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"client_id":             {c.cfg.ClientID},
		"redirect_uri":          {c.cfg.RedirectURI},
		"response_type":         {"code"},
		"scope":                 {scope},
		"state":                 {state},
		"code_challenge":        {pkce.CodeChallenge},
		"code_challenge_method": {pkce.CodeChallengeMethod},
	}

	var parResp struct {
		RequestURI string `json:"request_uri"`
		ExpiresIn  *int64 `json:"expires_in"`
	}
	if err := c.dpopFormPost(ctx, meta.PushedAuthorizationRequestURL, form, "", &parResp); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.pkce = &pkce
	c.state = state
	c.authServer = meta
	c.mu.Unlock()

	authorizeURL := strings.TrimSuffix(meta.AuthorizationEndpoint, "/") +
		"?client_id=" + url.QueryEscape(c.cfg.ClientID) +
		"&request_uri=" + url.QueryEscape(parResp.RequestURI)
	return authorizeURL, nil
}

// HandleCallback parses the OAuth redirect URL, validates state,
// exchanges the authorization code for tokens, stores them, and returns
// an Authenticated session.
func (c *Client) HandleCallback(ctx context.Context, callbackURL string) (Session, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return Session{}, atperr.InvalidURL(err)
	}
	q := u.Query()

	if oauthErr := q.Get("error"); oauthErr != "" {
		return Session{}, atperr.OAuthError(oauthErr, q.Get("error_description"), "")
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		return Session{}, atperr.OAuthError("invalid_request", "callback is missing code or state", "")
	}

	c.mu.Lock()
	expectedState := c.state
	pkce := c.pkce
	meta := c.authServer
	c.mu.Unlock()

	if expectedState == "" || state != expectedState {
		return Session{}, atperr.OAuthError("invalid_state", "callback state does not match the pending authorization attempt", "")
	}
	if pkce == nil {
		return Session{}, atperr.OAuthError("invalid_request", "no PKCE verifier pending for this callback", "")
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.cfg.RedirectURI},
		"client_id":     {c.cfg.ClientID},
		"code_verifier": {pkce.CodeVerifier},
	}

	var tokenResp TokenSet
	if err := c.dpopFormPost(ctx, meta.TokenEndpoint, form, "", &tokenResp); err != nil {
		return Session{}, err
	}

	if err := c.tokens.StoreTokens(tokenResp); err != nil {
		return Session{}, err
	}

	c.mu.Lock()
	c.pkce = nil
	c.state = ""
	c.mu.Unlock()

	return Session{State: SessionAuthenticated, DID: tokenResp.Sub}, nil
}

// RefreshTokens exchanges the stored refresh token for a new access
// token. Fails with TokenRefreshFailed when no refresh
// token is stored.
func (c *Client) RefreshTokens(ctx context.Context) (TokenSet, error) {
	current, err := c.tokens.GetTokens()
	if err != nil {
		return TokenSet{}, err
	}
	if current == nil || current.RefreshToken == "" {
		return TokenSet{}, atperr.TokenRefreshFailed("no refresh token stored")
	}

	c.mu.Lock()
	meta := c.authServer
	c.mu.Unlock()
	if meta.TokenEndpoint == "" {
		return TokenSet{}, atperr.TokenRefreshFailed("authorization server metadata not yet discovered")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {current.RefreshToken},
		"client_id":     {c.cfg.ClientID},
	}

	var tokenResp TokenSet
	if err := c.dpopFormPost(ctx, meta.TokenEndpoint, form, "", &tokenResp); err != nil {
		return TokenSet{}, atperr.TokenRefreshFailed(err.Error())
	}

	if err := c.tokens.StoreTokens(tokenResp); err != nil {
		return TokenSet{}, err
	}
	return tokenResp, nil
}

// GetAccessToken refreshes first if needed, then returns the stored
// access token.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	if c.tokens.NeedsRefresh() {
		if _, err := c.RefreshTokens(ctx); err != nil {
			return "", err
		}
	}
	tokens, err := c.tokens.GetTokens()
	if err != nil {
		return "", err
	}
	if tokens == nil {
		return "", atperr.SessionRequired()
	}
	return tokens.AccessToken, nil
}

// GetSession returns the current tagged session state.
func (c *Client) GetSession() (Session, error) {
	c.mu.Lock()
	pendingState := c.state
	c.mu.Unlock()
	if pendingState != "" {
		return Session{State: SessionAuthorizing, Stage: pendingState}, nil
	}

	tokens, err := c.tokens.GetTokens()
	if err != nil {
		return Session{}, err
	}
	if tokens == nil {
		return Session{State: SessionUnauthenticated}, nil
	}
	if c.tokens.IsExpired() {
		return Session{State: SessionExpired}, nil
	}
	return Session{State: SessionAuthenticated, DID: tokens.Sub}, nil
}

// TokenManager exposes the underlying token manager for callers that want
// direct access (e.g. to wire a shared manager into an xrpc auth
// provider).
func (c *Client) TokenManager() *TokenManager { return c.tokens }

// dpopFormPost posts a form-encoded body with a DPoP proof, retrying
// exactly once if the server responds 400 with a DPoP-Nonce header.
// accessToken, when set, is bound into the proof's "ath" claim.
func (c *Client) dpopFormPost(ctx context.Context, target string, form url.Values, accessToken string, out interface{}) error {
	body, status, header, err := c.doFormPost(ctx, target, form, accessToken)
	if err != nil {
		return err
	}

	if status == http.StatusBadRequest {
		if nonce := header.Get("DPoP-Nonce"); nonce != "" {
			c.dpop.UpdateNonce(nonce)
			body, status, header, err = c.doFormPost(ctx, target, form, accessToken)
			if err != nil {
				return err
			}
		}
	}

	if status < 200 || status >= 300 {
		return parseOAuthError(status, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return atperr.DecodingError(target, err.Error())
		}
	}
	return nil
}

func (c *Client) doFormPost(ctx context.Context, target string, form url.Values, accessToken string) ([]byte, int, http.Header, error) {
	proof, err := c.dpop.Proof(ctx, http.MethodPost, target, accessToken)
	if err != nil {
		return nil, 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, nil, atperr.InvalidURL(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("DPoP", proof)
	if accessToken != "" {
		req.Header.Set("Authorization", "DPoP "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, nil, atperr.NetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, atperr.NetworkError(err)
	}
	return body, resp.StatusCode, resp.Header, nil
}

type oauthErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri"`
}

func parseOAuthError(status int, body []byte) error {
	var parsed oauthErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return atperr.OAuthError(parsed.Error, parsed.ErrorDescription, parsed.ErrorURI)
	}
	return atperr.XRPCError(status, "", string(body))
}
