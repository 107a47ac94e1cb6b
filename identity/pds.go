package identity

import (
	"context"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atperr"
)

// PDSDiscoverer locates a user's Personal Data Server endpoint, resolving
// through a handle first when given one.
type PDSDiscoverer struct {
	dids    *CompositeResolver
	handles *HandleResolver
}

// NewPDSDiscoverer constructs a PDSDiscoverer.
func NewPDSDiscoverer(dids *CompositeResolver, handles *HandleResolver) *PDSDiscoverer {
	return &PDSDiscoverer{dids: dids, handles: handles}
}

// ResolveDID resolves the DID document and extracts its PDS endpoint.
func (d *PDSDiscoverer) ResolveDID(ctx context.Context, did atid.DID) (string, error) {
	doc, err := d.dids.Resolve(ctx, did)
	if err != nil {
		return "", err
	}
	endpoint, ok := doc.FindPDSEndpoint()
	if !ok {
		return "", atperr.PDSNotFound("DID document has no AtprotoPersonalDataServer service entry")
	}
	return endpoint, nil
}

// ResolveHandle resolves the handle to a DID, then to its PDS endpoint.
func (d *PDSDiscoverer) ResolveHandle(ctx context.Context, handle atid.Handle) (string, error) {
	did, err := d.handles.Resolve(ctx, handle)
	if err != nil {
		return "", err
	}
	return d.ResolveDID(ctx, did)
}
