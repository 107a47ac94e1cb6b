package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atperr"
	"github.com/bluesky-go/atproto/identity"
)

func TestPLCResolverFetchesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/did:plc:abc123", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{
			"id": "did:plc:abc123",
			"service": [{"id": "#atproto_pds", "type": "AtprotoPersonalDataServer", "serviceEndpoint": "https://pds.example"}]
		}`))
	}))
	defer srv.Close()

	r := identity.NewPLCResolver(srv.URL, srv.Client())
	doc, err := r.Resolve(context.Background(), atid.MustParseDID("did:plc:abc123"))
	require.NoError(t, err)

	endpoint, ok := doc.FindPDSEndpoint()
	require.True(t, ok)
	assert.Equal(t, "https://pds.example", endpoint)
}

func TestPLCResolverRejectsWrongMethod(t *testing.T) {
	r := identity.NewPLCResolver("https://plc.directory", nil)
	_, err := r.Resolve(context.Background(), atid.MustParseDID("did:web:example.com"))
	assert.Error(t, err)
}

func TestHandleResolverParsesTrimmedDID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.well-known/atproto-did", r.URL.Path)
		w.Write([]byte("did:plc:abc123\n"))
	}))
	defer srv.Close()

	// Point the handle at the test server's host via a client that
	// rewrites the scheme+host, mirroring how an integration test would
	// stub DNS for a bare-domain handle.
	client := &rewriteHostClient{base: srv.URL, inner: srv.Client()}
	r := identity.NewHandleResolver(client)

	h := atid.MustParseHandle("alice.test")
	did, err := r.Resolve(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, "did:plc:abc123", did.String())
}

func TestHandleResolverRejectsInvalidDID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-a-did"))
	}))
	defer srv.Close()

	client := &rewriteHostClient{base: srv.URL, inner: srv.Client()}
	r := identity.NewHandleResolver(client)

	_, err := r.Resolve(context.Background(), atid.MustParseHandle("alice.test"))
	var aerr *atperr.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, atperr.KindHandleResolutionFailed, aerr.Kind)
}

func TestDiscoverAuthServerReturnsFirstEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.well-known/oauth-protected-resource", r.URL.Path)
		w.Write([]byte(`{"authorization_servers": ["https://auth.example", "https://backup.example"]}`))
	}))
	defer srv.Close()

	issuer, err := identity.DiscoverAuthServer(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example", issuer)
}

func TestPDSDiscovererResolveHandle(t *testing.T) {
	plcSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "did:plc:abc123",
			"service": [{"id": "#atproto_pds", "type": "AtprotoPersonalDataServer", "serviceEndpoint": "https://pds.example"}]
		}`))
	}))
	defer plcSrv.Close()

	handleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("did:plc:abc123"))
	}))
	defer handleSrv.Close()

	plc := identity.NewPLCResolver(plcSrv.URL, plcSrv.Client())
	web := identity.NewWebResolver(plcSrv.Client())
	composite := identity.NewCompositeResolver(plc, web)

	handleClient := &rewriteHostClient{base: handleSrv.URL, inner: handleSrv.Client()}
	handles := identity.NewHandleResolver(handleClient)

	discoverer := identity.NewPDSDiscoverer(composite, handles)
	endpoint, err := discoverer.ResolveHandle(context.Background(), atid.MustParseHandle("alice.test"))
	require.NoError(t, err)
	assert.Equal(t, "https://pds.example", endpoint)
}

// rewriteHostClient redirects every outgoing request to base, preserving
// path and query, so tests can exercise fixed "https://<handle>/..." URL
// construction against an httptest.Server.
type rewriteHostClient struct {
	base  string
	inner *http.Client
}

func (c *rewriteHostClient) Do(req *http.Request) (*http.Response, error) {
	target, err := req.URL.Parse(c.base + req.URL.Path)
	if err != nil {
		return nil, err
	}
	req.URL = target
	req.Host = ""
	return c.inner.Do(req)
}

func TestWebResolverBareDomainUsesWellKnown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.well-known/did.json", r.URL.Path)
		w.Write([]byte(`{"id": "did:web:example.com"}`))
	}))
	defer srv.Close()

	client := &rewriteHostClient{base: srv.URL, inner: srv.Client()}
	r := identity.NewWebResolver(client)

	doc, err := r.Resolve(context.Background(), atid.MustParseDID("did:web:example.com"))
	require.NoError(t, err)
	assert.Equal(t, "did:web:example.com", doc.ID)
}

func TestWebResolverSubpathJoinsSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/alice/did.json", r.URL.Path)
		w.Write([]byte(`{"id": "did:web:example.com:users:alice"}`))
	}))
	defer srv.Close()

	client := &rewriteHostClient{base: srv.URL, inner: srv.Client()}
	r := identity.NewWebResolver(client)

	doc, err := r.Resolve(context.Background(), atid.MustParseDID("did:web:example.com:users:alice"))
	require.NoError(t, err)
	assert.Equal(t, "did:web:example.com:users:alice", doc.ID)
}

func TestCompositeResolverRejectsUnsupportedMethods(t *testing.T) {
	composite := identity.NewCompositeResolver(
		identity.NewPLCResolver("", nil),
		identity.NewWebResolver(nil),
	)

	for _, did := range []string{"did:key:zQ3shabc", "did:example:123"} {
		_, err := composite.Resolve(context.Background(), atid.MustParseDID(did))
		var aerr *atperr.Error
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, atperr.KindDIDResolutionFailed, aerr.Kind)
	}
}
