// Package oauth implements the client side of the protocol's OAuth 2.1
// authorization flow: Pushed Authorization Requests, PKCE (S256),
// Demonstration of Proof-of-Possession (DPoP) with nonce retry, token
// lifecycle management, and session exposure.
package oauth

import (
	"context"
	"net/http"

	"github.com/bluesky-go/atproto/xrpc"
)

// HTTPClient is the narrow interface the OAuth client dispatches requests
// through, the same shape xrpc.HTTPExecutor and identity.HTTPClient use so
// callers can share one transport across all three packages.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultClient(c HTTPClient) HTTPClient {
	if c != nil {
		return c
	}
	return xrpc.NewDefaultHTTPClient(xrpc.DefaultTimeout, nil, false)
}

// dpopProofer is the subset of *DPoPManager the Client needs, narrowed so
// tests can substitute a fake proof generator.
type dpopProofer interface {
	Proof(ctx context.Context, method, url, accessToken string) (string, error)
	UpdateNonce(nonce string)
}
