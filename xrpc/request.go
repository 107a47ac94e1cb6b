// Package xrpc implements the transport-agnostic AT Protocol RPC client:
// request construction, dispatch through a pluggable HTTPExecutor, response
// decoding, and error mapping.
package xrpc

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// HTTPExecutor is the narrow interface the client dispatches requests
// through. Callers may supply any implementation (plain net/http, a
// retrying wrapper, a test double); the default is NewHTTPExecutor.
type HTTPExecutor interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthProvider is consulted before each dispatch; its return value, when
// non-empty, is placed in the Authorization header.
type AuthProvider func(ctx context.Context) (string, error)

// httpExecutorFunc adapts a plain func to HTTPExecutor.
type httpExecutorFunc func(req *http.Request) (*http.Response, error)

func (f httpExecutorFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// NewHTTPExecutor returns the default HTTPExecutor. A nil client builds
// one via NewDefaultHTTPClient with the default 30-second per-request
// timeout.
func NewHTTPExecutor(client *http.Client) HTTPExecutor {
	if client == nil {
		client = NewDefaultHTTPClient(DefaultTimeout, nil, false)
	}
	return httpExecutorFunc(client.Do)
}

// buildURL joins serviceBase with /xrpc/<nsid>, collapsing a trailing
// slash on serviceBase, and appends params in key-sorted order.
func buildURL(serviceBase, nsid string, params map[string]string) (string, error) {
	base := strings.TrimSuffix(serviceBase, "/")
	u, err := url.Parse(base + "/xrpc/" + nsid)
	if err != nil {
		return "", err
	}

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		q := u.Query()
		for _, k := range keys {
			q.Set(k, params[k])
		}
		u.RawQuery = encodeSorted(q)
	}

	return u.String(), nil
}

// encodeSorted mirrors url.Values.Encode but is explicit about ordering
// so the behavior does not silently change across Go versions.
func encodeSorted(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		for j, v := range q[k] {
			if i > 0 || j > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}
