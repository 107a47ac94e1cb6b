package identity

import (
	"context"
	"strings"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atperr"
)

// DefaultPLCDirectory is the PLC directory used when a caller does not
// configure one.
const DefaultPLCDirectory = "https://plc.directory"

// PLCResolver resolves did:plc identifiers against a PLC directory
// server.
type PLCResolver struct {
	directoryBase string
	client        HTTPClient
}

// NewPLCResolver constructs a PLCResolver against directoryBase. An
// empty directoryBase falls back to DefaultPLCDirectory.
func NewPLCResolver(directoryBase string, client HTTPClient) *PLCResolver {
	if directoryBase == "" {
		directoryBase = DefaultPLCDirectory
	}
	return &PLCResolver{
		directoryBase: strings.TrimSuffix(directoryBase, "/"),
		client:        defaultClient(client),
	}
}

// Resolve fetches and decodes the DID document for did, which must have
// method "plc".
func (r *PLCResolver) Resolve(ctx context.Context, did atid.DID) (*Document, error) {
	if did.MethodKind() != atid.DIDMethodPLC {
		return nil, atperr.DIDResolutionFailed("PLCResolver only resolves did:plc, got method " + did.Method())
	}

	var doc Document
	url := r.directoryBase + "/" + did.String()
	if err := getJSON(ctx, r.client, url, &doc); err != nil {
		return nil, atperr.DIDResolutionFailed("failed to fetch did:plc document: " + err.Error())
	}
	return &doc, nil
}
