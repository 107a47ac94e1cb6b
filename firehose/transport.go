// Package firehose implements the subscription client for the live
// repository event stream (com.atproto.sync.subscribeRepos). The
// WebSocket transport is pluggable so the client can be exercised
// without a real network socket.
package firehose

import "context"

// MessageType mirrors the WebSocket frame types the transport surfaces.
// Only BinaryMessage frames carry protocol data; TextMessage frames are
// ignored.
type MessageType int

const (
	TextMessage   MessageType = 1
	BinaryMessage MessageType = 2
)

// NormalClosure is the WebSocket close code used by Disconnect.
const NormalClosure = 1000

// Conn is the minimal WebSocket connection surface the client drives.
type Conn interface {
	ReadMessage() (MessageType, []byte, error)
	Close(code int, reason string) error
}

// Dialer opens a Conn to a subscription URL. The gorilla/websocket-backed
// implementation lives in websocket.go; tests substitute a fake.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}
