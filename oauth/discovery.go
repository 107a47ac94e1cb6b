package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/bluesky-go/atproto/atperr"
)

// ServerMetadata is the subset of RFC 8414 authorization server metadata
// this module consumes.
type ServerMetadata struct {
	Issuer                        string `json:"issuer"`
	AuthorizationEndpoint         string `json:"authorization_endpoint"`
	TokenEndpoint                 string `json:"token_endpoint"`
	PushedAuthorizationRequestURL string `json:"pushed_authorization_request_endpoint"`
}

// ServerDiscovery fetches and memoizes authorization-server metadata by
// issuer URL. Memoization is serialized with a mutex.
type ServerDiscovery struct {
	client HTTPClient

	mu     sync.Mutex
	caches map[string]ServerMetadata
}

// NewServerDiscovery constructs a ServerDiscovery.
func NewServerDiscovery(client HTTPClient) *ServerDiscovery {
	return &ServerDiscovery{client: defaultClient(client), caches: make(map[string]ServerMetadata)}
}

// Discover fetches <issuer>/.well-known/oauth-authorization-server,
// validates the response's issuer matches exactly, and memoizes the
// result by issuer string.
func (d *ServerDiscovery) Discover(ctx context.Context, issuer string) (ServerMetadata, error) {
	d.mu.Lock()
	if cached, ok := d.caches[issuer]; ok {
		d.mu.Unlock()
		return cached, nil
	}
	d.mu.Unlock()

	url := strings.TrimSuffix(issuer, "/") + "/.well-known/oauth-authorization-server"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ServerMetadata{}, atperr.InvalidURL(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return ServerMetadata{}, atperr.NetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ServerMetadata{}, atperr.NetworkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ServerMetadata{}, atperr.OAuthError("discovery_failed", "authorization server metadata fetch failed", "")
	}

	var meta ServerMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return ServerMetadata{}, atperr.DecodingError(url, err.Error())
	}
	if meta.Issuer != issuer {
		return ServerMetadata{}, atperr.OAuthError("invalid_issuer", "authorization server metadata issuer does not match requested issuer", "")
	}

	d.mu.Lock()
	d.caches[issuer] = meta
	d.mu.Unlock()

	return meta, nil
}
