package xrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bluesky-go/atproto/atperr"
	"github.com/bluesky-go/atproto/internal/telemetry"
)

// Client dispatches AT Protocol XRPC query and procedure calls against a
// single PDS or other service base URL.
type Client struct {
	serviceBase   string
	executor      HTTPExecutor
	auth          AuthProvider
	log           telemetry.Logger
	lastRateLimit RateLimit
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor overrides the HTTPExecutor used to dispatch requests.
func WithExecutor(e HTTPExecutor) Option {
	return func(c *Client) { c.executor = e }
}

// WithAuthProvider installs an async authorization header provider,
// consulted before every dispatch.
func WithAuthProvider(p AuthProvider) Option {
	return func(c *Client) { c.auth = p }
}

// WithLogger installs a Logger that records each dispatched request at
// debug level. The default discards everything.
func WithLogger(l telemetry.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient constructs a Client against serviceBase (e.g. a PDS URL).
func NewClient(serviceBase string, opts ...Option) *Client {
	c := &Client{serviceBase: serviceBase, executor: NewHTTPExecutor(nil), log: telemetry.NopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LastRateLimit returns the ratelimit-* headers observed on the most
// recently dispatched response.
func (c *Client) LastRateLimit() RateLimit { return c.lastRateLimit }

// BlobUploadResponse is the decoded response of com.atproto.repo.uploadBlob.
type BlobUploadResponse struct {
	Blob json.RawMessage `json:"blob"`
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.auth == nil {
		return nil
	}
	value, err := c.auth(ctx)
	if err != nil {
		return err
	}
	if value != "" {
		req.Header.Set("Authorization", value)
	}
	return nil
}

// Query performs a GET request against nsid with the given query
// parameters and decodes the JSON response into out. A nil out skips
// decoding even on success.
func (c *Client) Query(ctx context.Context, nsid string, params map[string]string, out interface{}) error {
	target, err := buildURL(c.serviceBase, nsid, params)
	if err != nil {
		return atperr.InvalidURL(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return atperr.InvalidURL(err)
	}
	req.Header.Set("Accept", "application/json")

	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	return c.dispatch(req, out)
}

// Procedure performs a POST request against nsid with an optional JSON
// input body and decodes the JSON response into out. A nil input sends
// no body; a nil out decodes nothing beyond validating the status.
func (c *Client) Procedure(ctx context.Context, nsid string, input interface{}, out interface{}) error {
	var body io.Reader
	if input != nil {
		encoded, err := json.Marshal(input)
		if err != nil {
			return atperr.EncodingError("failed to encode procedure input: " + err.Error())
		}
		body = bytes.NewReader(encoded)
	}

	target, err := buildURL(c.serviceBase, nsid, nil)
	if err != nil {
		return atperr.InvalidURL(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return atperr.InvalidURL(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	return c.dispatch(req, out)
}

// UploadBlob performs a raw-bytes POST to com.atproto.repo.uploadBlob.
func (c *Client) UploadBlob(ctx context.Context, data []byte, mimeType string) (*BlobUploadResponse, error) {
	target, err := buildURL(c.serviceBase, "com.atproto.repo.uploadBlob", nil)
	if err != nil {
		return nil, atperr.InvalidURL(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return nil, atperr.InvalidURL(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mimeType)

	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	var out BlobUploadResponse
	if err := c.dispatch(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) dispatch(req *http.Request, out interface{}) error {
	c.log.Debugf("xrpc: %s %s", req.Method, req.URL.String())
	resp, err := c.executor.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return atperr.Timeout()
		}
		return atperr.NetworkError(err)
	}
	defer resp.Body.Close()

	c.lastRateLimit = ParseRateLimit(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return atperr.NetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapErrorResponse(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return atperr.DecodingError(req.URL.Path, err.Error())
	}
	return nil
}
