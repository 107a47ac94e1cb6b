package xrpc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bluesky-go/atproto/xrpc"
)

func TestNewDefaultHTTPClient_DefaultsTimeout(t *testing.T) {
	c := xrpc.NewDefaultHTTPClient(0, nil, false)
	assert.Equal(t, xrpc.DefaultTimeout, c.Timeout)
}

func TestNewDefaultHTTPClient_CustomTimeout(t *testing.T) {
	c := xrpc.NewDefaultHTTPClient(5*time.Second, nil, false)
	assert.Equal(t, 5*time.Second, c.Timeout)
}

func TestNewDefaultHTTPClient_IgnoresUnparsableExtraCA(t *testing.T) {
	c := xrpc.NewDefaultHTTPClient(time.Second, []string{"not a pem certificate"}, false)
	assert.NotNil(t, c.Transport)
}
