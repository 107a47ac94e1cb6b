package xrpc

import (
	"encoding/json"

	"github.com/bluesky-go/atproto/atperr"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// mapErrorResponse maps a non-2xx HTTP response to a structured error per
// the status/body table: 401 with error=="ExpiredToken" maps to
// TokenExpired, other 401s to Unauthorized, 429 defaults to
// RateLimitExceeded unless the body overrides it, and everything else
// surfaces the JSON error/message pair when present.
func mapErrorResponse(status int, body []byte) error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed) // best-effort; empty fields on failure

	switch status {
	case 401:
		if parsed.Error == "ExpiredToken" {
			return atperr.TokenExpired()
		}
		return atperr.Unauthorized()
	case 429:
		code := parsed.Error
		if code == "" {
			code = "RateLimitExceeded"
		}
		message := parsed.Message
		if message == "" {
			message = "Rate limit exceeded"
		}
		return atperr.XRPCError(status, code, message)
	default:
		return atperr.XRPCError(status, parsed.Error, parsed.Message)
	}
}
