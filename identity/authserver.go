package identity

import (
	"context"
	"strings"

	"github.com/bluesky-go/atproto/atperr"
)

type protectedResourceMetadata struct {
	AuthorizationServers []string `json:"authorization_servers"`
}

// DiscoverAuthServer fetches <pds>/.well-known/oauth-protected-resource
// and returns the first entry of authorization_servers.
func DiscoverAuthServer(ctx context.Context, client HTTPClient, pdsBase string) (string, error) {
	url := strings.TrimSuffix(pdsBase, "/") + "/.well-known/oauth-protected-resource"

	var meta protectedResourceMetadata
	if err := getJSON(ctx, defaultClient(client), url, &meta); err != nil {
		return "", atperr.PDSNotFound("failed to fetch oauth-protected-resource metadata: " + err.Error())
	}
	if len(meta.AuthorizationServers) == 0 {
		return "", atperr.PDSNotFound("oauth-protected-resource metadata has no authorization_servers")
	}
	return meta.AuthorizationServers[0], nil
}
