package identity

import (
	"context"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atperr"
)

// DIDResolver resolves a DID to its document.
type DIDResolver interface {
	Resolve(ctx context.Context, did atid.DID) (*Document, error)
}

// CompositeResolver dispatches DID resolution by method. "key" and any
// unrecognized method fail with an explicit unsupported-method error.
type CompositeResolver struct {
	plc *PLCResolver
	web *WebResolver
}

// NewCompositeResolver constructs a CompositeResolver wired to both
// concrete resolvers.
func NewCompositeResolver(plc *PLCResolver, web *WebResolver) *CompositeResolver {
	return &CompositeResolver{plc: plc, web: web}
}

func (r *CompositeResolver) Resolve(ctx context.Context, did atid.DID) (*Document, error) {
	switch did.MethodKind() {
	case atid.DIDMethodPLC:
		return r.plc.Resolve(ctx, did)
	case atid.DIDMethodWeb:
		return r.web.Resolve(ctx, did)
	default:
		return nil, atperr.DIDResolutionFailed("unsupported method: " + did.Method())
	}
}
