package identity

import (
	"context"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atperr"
)

// HandleResolver resolves a handle to a DID via the HTTP well-known
// method. DNS-TXT resolution is not implemented; a DNS-backed resolver
// can be layered in front without changing this type's contract.
type HandleResolver struct {
	client HTTPClient
}

// NewHandleResolver constructs a HandleResolver.
func NewHandleResolver(client HTTPClient) *HandleResolver {
	return &HandleResolver{client: defaultClient(client)}
}

// Resolve fetches https://<handle>/.well-known/atproto-did, trims the
// response body, and parses it as a DID.
func (r *HandleResolver) Resolve(ctx context.Context, handle atid.Handle) (atid.DID, error) {
	url := "https://" + handle.String() + "/.well-known/atproto-did"
	body, err := getPlainText(ctx, r.client, url)
	if err != nil {
		return atid.DID{}, atperr.HandleResolutionFailed("failed to fetch atproto-did: " + err.Error())
	}

	did, ok := atid.ParseDID(body)
	if !ok {
		return atid.DID{}, atperr.HandleResolutionFailed("atproto-did response is not a valid DID")
	}
	return did, nil
}
