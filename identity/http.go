package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/bluesky-go/atproto/atperr"
	"github.com/bluesky-go/atproto/xrpc"
)

// HTTPClient is the narrow interface resolvers dispatch requests through,
// matching xrpc.HTTPExecutor's shape so callers can share a single
// transport across both packages.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultClient(c HTTPClient) HTTPClient {
	if c != nil {
		return c
	}
	return xrpc.NewDefaultHTTPClient(xrpc.DefaultTimeout, nil, false)
}

func getJSON(ctx context.Context, client HTTPClient, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return atperr.NetworkError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return atperr.NetworkError(errors.Wrap(err, "identity: request failed"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return atperr.NetworkError(errors.Wrap(err, "identity: reading response body"))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return atperr.NetworkError(errors.WithStack(errStatus(resp.StatusCode)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return atperr.DecodingError(url, err.Error())
	}
	return nil
}

func getPlainText(ctx context.Context, client HTTPClient, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", atperr.NetworkError(err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return "", atperr.NetworkError(errors.Wrap(err, "identity: request failed"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", atperr.NetworkError(errors.Wrap(err, "identity: reading response body"))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", atperr.NetworkError(errors.WithStack(errStatus(resp.StatusCode)))
	}
	return strings.TrimSpace(string(body)), nil
}

func errStatus(code int) error { return fmt.Errorf("unexpected HTTP status %d", code) }
