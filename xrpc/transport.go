package xrpc

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"net"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout is the per-request timeout applied by
// NewDefaultHTTPClient when the caller does not override it.
const DefaultTimeout = 30 * time.Second

// extractCAs loads each entry of rootCAs as PEM bytes, trying in order: a
// filesystem path, a base64-encoded PEM blob, or the raw string itself.
func extractCAs(rootCAs []string) [][]byte {
	result := make([][]byte, 0, len(rootCAs))
	for _, ca := range rootCAs {
		if ca == "" {
			continue
		}
		pemData, err := os.ReadFile(ca)
		if err != nil {
			pemData, err = base64.StdEncoding.DecodeString(ca)
			if err != nil {
				pemData = []byte(ca)
			}
		}
		result = append(result, pemData)
	}
	return result
}

// NewDefaultHTTPClient builds the *http.Client used when a caller does
// not supply their own HTTPExecutor: a pooled transport with dial and TLS
// handshake timeouts and an overall per-request timeout. extraRootCAs
// entries that fail to parse as PEM are silently skipped, so a
// zero-value call (no extra CAs, system pool, strict verification)
// always succeeds.
func NewDefaultHTTPClient(timeout time.Duration, extraRootCAs []string, insecureSkipVerify bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: insecureSkipVerify}
	if len(extraRootCAs) > 0 {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		for _, pemBytes := range extractCAs(extraRootCAs) {
			pool.AppendCertsFromPEM(pemBytes)
		}
		tlsConfig.RootCAs = pool
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
			Proxy:           http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
