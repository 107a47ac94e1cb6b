package firehose

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

const closeWriteWait = 5 * time.Second

// GorillaDialer dials real WebSocket connections via gorilla/websocket.
type GorillaDialer struct {
	Dialer *websocket.Dialer
}

// NewGorillaDialer constructs a GorillaDialer using websocket.DefaultDialer.
func NewGorillaDialer() *GorillaDialer {
	return &GorillaDialer{Dialer: websocket.DefaultDialer}
}

func (d *GorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &gorillaConn{conn: conn}, nil
}

type gorillaConn struct {
	conn *websocket.Conn
}

func (c *gorillaConn) ReadMessage() (MessageType, []byte, error) {
	mt, data, err := c.conn.ReadMessage()
	if err != nil {
		return 0, nil, err
	}
	return MessageType(mt), data, nil
}

func (c *gorillaConn) Close(code int, reason string) error {
	deadline := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, deadline, time.Now().Add(closeWriteWait))
	return c.conn.Close()
}
