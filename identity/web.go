package identity

import (
	"context"
	"strings"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atperr"
)

// WebResolver resolves did:web identifiers by fetching a well-known
// document from the encoded domain.
type WebResolver struct {
	client HTTPClient
}

// NewWebResolver constructs a WebResolver.
func NewWebResolver(client HTTPClient) *WebResolver {
	return &WebResolver{client: defaultClient(client)}
}

// Resolve fetches and decodes the DID document for did, which must have
// method "web". A bare domain (no further colon-separated parts) fetches
// /.well-known/did.json; additional parts are joined with '/' and the
// fetch is "<domain>/<path>/did.json" instead.
func (r *WebResolver) Resolve(ctx context.Context, did atid.DID) (*Document, error) {
	if did.MethodKind() != atid.DIDMethodWeb {
		return nil, atperr.DIDResolutionFailed("WebResolver only resolves did:web, got method " + did.Method())
	}

	parts := strings.Split(did.Identifier(), ":")
	domain := parts[0]

	var url string
	if len(parts) == 1 {
		url = "https://" + domain + "/.well-known/did.json"
	} else {
		url = "https://" + domain + "/" + strings.Join(parts[1:], "/") + "/did.json"
	}

	var doc Document
	if err := getJSON(ctx, r.client, url, &doc); err != nil {
		return nil, atperr.DIDResolutionFailed("failed to fetch did:web document: " + err.Error())
	}
	return &doc, nil
}
