package xrpc

import (
	"net/http"
	"strconv"
)

// RateLimit carries the parsed ratelimit-* response headers. Any header
// that is missing or fails to parse leaves the corresponding field nil.
type RateLimit struct {
	Limit     *int64
	Remaining *int64
	Reset     *int64
	Policy    *string
}

// ParseRateLimit reads the ratelimit-limit/remaining/reset/policy headers
// (case-insensitive, per net/http.Header) from header.
func ParseRateLimit(header http.Header) RateLimit {
	return RateLimit{
		Limit:     parseIntHeader(header, "ratelimit-limit"),
		Remaining: parseIntHeader(header, "ratelimit-remaining"),
		Reset:     parseIntHeader(header, "ratelimit-reset"),
		Policy:    parseStringHeader(header, "ratelimit-policy"),
	}
}

func parseIntHeader(header http.Header, key string) *int64 {
	raw := header.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseStringHeader(header http.Header, key string) *string {
	raw := header.Get(key)
	if raw == "" {
		return nil
	}
	return &raw
}
