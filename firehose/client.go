package firehose

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/bluesky-go/atproto/atperr"
	"github.com/bluesky-go/atproto/frame"
	"github.com/bluesky-go/atproto/internal/telemetry"
)

// Client subscribes to a relay's com.atproto.sync.subscribeRepos
// endpoint and yields decoded events. The connection is the single piece
// of mutable state the client owns and is serialized behind a mutex.
type Client struct {
	dialer   Dialer
	relayURL string
	log      telemetry.Logger

	mu   sync.Mutex
	conn Conn
}

// DefaultRelayURL is the relay endpoint used when a caller does not
// configure one.
const DefaultRelayURL = "wss://bsky.network"

// NewClient constructs a Client dialing relayURL through dialer. An
// empty relayURL falls back to DefaultRelayURL; a nil dialer defaults to
// a real gorilla/websocket dialer.
func NewClient(dialer Dialer, relayURL string) *Client {
	if dialer == nil {
		dialer = NewGorillaDialer()
	}
	if relayURL == "" {
		relayURL = DefaultRelayURL
	}
	return &Client{dialer: dialer, relayURL: relayURL, log: telemetry.NopLogger()}
}

// WithLogger installs a Logger that records dial attempts and dropped
// frame-decoding errors. The default discards everything.
func (c *Client) WithLogger(l telemetry.Logger) *Client {
	if l != nil {
		c.log = l
	}
	return c
}

func buildSubscribeURL(relayURL string, cursor *int64) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", atperr.InvalidURL(err)
	}
	u.Path = joinPath(u.Path, "/xrpc/com.atproto.sync.subscribeRepos")
	if cursor != nil {
		q := u.Query()
		q.Set("cursor", strconv.FormatInt(*cursor, 10))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func joinPath(base, suffix string) string {
	if base == "" {
		return suffix
	}
	if base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + suffix
}

// SubscribeRepos opens the WebSocket connection and returns a channel of
// decoded events and a channel that receives at most one transport error
// before being closed. Individual frame-decoding errors are silently
// dropped, not surfaced. The events channel is closed when the stream
// ends (transport error or ctx cancellation).
func (c *Client) SubscribeRepos(ctx context.Context, cursor *int64) (<-chan frame.Event, <-chan error, error) {
	subURL, err := buildSubscribeURL(c.relayURL, cursor)
	if err != nil {
		return nil, nil, err
	}

	c.log.Infof("firehose: dialing %s", subURL)
	conn, err := c.dialer.Dial(ctx, subURL)
	if err != nil {
		return nil, nil, fmt.Errorf("firehose: dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	events := make(chan frame.Event)
	errs := make(chan error, 1)
	done := make(chan struct{})

	// A cancelled subscription must close its socket, not just stop
	// reading from it.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close(NormalClosure, "")
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(errs)
		defer close(done)
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					errs <- err
				}
				return
			}
			if mt != BinaryMessage {
				continue
			}
			ev, err := frame.Decode(data)
			if err != nil {
				c.log.Debugf("firehose: dropping undecodable frame: %v", err)
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, errs, nil
}

// Disconnect closes the transport with a normal-closure code. It is a
// no-op if no connection is open.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close(NormalClosure, "")
}
