// Package atperr defines the single closed set of error kinds produced by
// this module. Every failure surfaced across identifiers, crypto, xrpc,
// identity resolution, OAuth, and the firehose is an *atperr.Error carrying
// one of the Kind values below.
package atperr

import "fmt"

// Kind identifies the category of a failure. Kinds are closed: callers
// should switch on Kind rather than comparing *Error values or strings.
type Kind int

const (
	KindInternal Kind = iota

	// Validation
	KindInvalidDID
	KindInvalidHandle
	KindInvalidNSID
	KindInvalidATURI
	KindInvalidTID

	// Transport
	KindNetworkError
	KindTimeout
	KindInvalidURL

	// RPC
	KindXRPCError
	KindInvalidResponse
	KindDecodingError
	KindEncodingError

	// Auth
	KindUnauthorized
	KindTokenExpired
	KindTokenRefreshFailed
	KindOAuthError
	KindSessionRequired

	// Identity
	KindDIDResolutionFailed
	KindHandleResolutionFailed
	KindPDSNotFound

	// Repository
	KindInvalidRecord
	KindRecordNotFound
	KindRepositoryError
	KindMSTError

	// Crypto
	KindCryptoError
	KindInvalidSignature
	KindUnsupportedAlgorithm

	// Stream
	KindConnectionClosed
	KindFrameDecodingError
)

var kindNames = map[Kind]string{
	KindInternal:               "internal-error",
	KindInvalidDID:             "invalid-did",
	KindInvalidHandle:          "invalid-handle",
	KindInvalidNSID:            "invalid-nsid",
	KindInvalidATURI:           "invalid-at-uri",
	KindInvalidTID:             "invalid-tid",
	KindNetworkError:           "network-error",
	KindTimeout:                "timeout",
	KindInvalidURL:             "invalid-url",
	KindXRPCError:              "xrpc-error",
	KindInvalidResponse:        "invalid-response",
	KindDecodingError:          "decoding-error",
	KindEncodingError:          "encoding-error",
	KindUnauthorized:           "unauthorized",
	KindTokenExpired:           "token-expired",
	KindTokenRefreshFailed:     "token-refresh-failed",
	KindOAuthError:             "oauth-error",
	KindSessionRequired:        "session-required",
	KindDIDResolutionFailed:    "did-resolution-failed",
	KindHandleResolutionFailed: "handle-resolution-failed",
	KindPDSNotFound:            "pds-not-found",
	KindInvalidRecord:          "invalid-record",
	KindRecordNotFound:         "record-not-found",
	KindRepositoryError:        "repository-error",
	KindMSTError:               "mst-error",
	KindCryptoError:            "crypto-error",
	KindInvalidSignature:       "invalid-signature",
	KindUnsupportedAlgorithm:   "unsupported-algorithm",
	KindConnectionClosed:       "connection-closed",
	KindFrameDecodingError:     "frame-decoding-error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown-error"
}

// Error is the single error type produced by this module. Extra fields are
// populated only when the Kind calls for them (see the constructors below);
// Error() formats whichever are set.
type Error struct {
	Kind Kind

	Message string
	Cause   error

	// RPC
	Status int

	// OAuth
	OAuthErrorCode string
	OAuthErrorURI  string

	// Repository
	Collection string
	RKey       string

	// Decoding
	Path string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindXRPCError:
		if e.OAuthErrorCode != "" {
			return fmt.Sprintf("xrpc-error(%d, %s): %s", e.Status, e.OAuthErrorCode, e.Message)
		}
		return fmt.Sprintf("xrpc-error(%d): %s", e.Status, e.Message)
	case KindOAuthError:
		if e.Message != "" {
			return fmt.Sprintf("oauth-error(%s): %s", e.OAuthErrorCode, e.Message)
		}
		return fmt.Sprintf("oauth-error(%s)", e.OAuthErrorCode)
	case KindRecordNotFound:
		return fmt.Sprintf("record-not-found(%s, %s)", e.Collection, e.RKey)
	case KindDecodingError:
		if e.Path != "" {
			return fmt.Sprintf("decoding-error(%s): %s", e.Path, e.Message)
		}
		return fmt.Sprintf("decoding-error: %s", e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// As is a thin wrapper over errors.As kept local so callers don't need two
// imports for the common case.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func InvalidDID(s string) *Error    { return New(KindInvalidDID, fmt.Sprintf("invalid DID: %q", s)) }
func InvalidHandle(s string) *Error { return New(KindInvalidHandle, fmt.Sprintf("invalid handle: %q", s)) }
func InvalidNSID(s string) *Error   { return New(KindInvalidNSID, fmt.Sprintf("invalid NSID: %q", s)) }
func InvalidATURI(s string) *Error  { return New(KindInvalidATURI, fmt.Sprintf("invalid AT-URI: %q", s)) }
func InvalidTID(s string) *Error    { return New(KindInvalidTID, fmt.Sprintf("invalid TID: %q", s)) }

func NetworkError(cause error) *Error {
	return Wrap(KindNetworkError, cause, "network request failed")
}

func Timeout() *Error { return New(KindTimeout, "request timed out") }

func InvalidURL(cause error) *Error { return Wrap(KindInvalidURL, cause, "invalid URL") }

func XRPCError(status int, code, message string) *Error {
	return &Error{Kind: KindXRPCError, Status: status, OAuthErrorCode: code, Message: message}
}

func DecodingError(path, message string) *Error {
	return &Error{Kind: KindDecodingError, Path: path, Message: message}
}

func EncodingError(message string) *Error { return New(KindEncodingError, message) }

func Unauthorized() *Error    { return New(KindUnauthorized, "unauthorized") }
func TokenExpired() *Error    { return New(KindTokenExpired, "access token expired") }
func SessionRequired() *Error { return New(KindSessionRequired, "authenticated session required") }

func TokenRefreshFailed(reason string) *Error {
	return New(KindTokenRefreshFailed, reason)
}

func OAuthError(code, description, uri string) *Error {
	return &Error{Kind: KindOAuthError, OAuthErrorCode: code, OAuthErrorURI: uri, Message: description}
}

func DIDResolutionFailed(reason string) *Error {
	return New(KindDIDResolutionFailed, reason)
}

func HandleResolutionFailed(reason string) *Error {
	return New(KindHandleResolutionFailed, reason)
}

func PDSNotFound(reason string) *Error { return New(KindPDSNotFound, reason) }

func InvalidRecord(reason string) *Error { return New(KindInvalidRecord, reason) }

func RecordNotFound(collection, rkey string) *Error {
	return &Error{Kind: KindRecordNotFound, Collection: collection, RKey: rkey}
}

func RepositoryError(reason string) *Error { return New(KindRepositoryError, reason) }
func MSTError(reason string) *Error        { return New(KindMSTError, reason) }

func CryptoError(reason string) *Error      { return New(KindCryptoError, reason) }
func InvalidSignature() *Error              { return New(KindInvalidSignature, "signature verification failed") }
func UnsupportedAlgorithm(reason string) *Error {
	return New(KindUnsupportedAlgorithm, reason)
}

func ConnectionClosed(reason string) *Error {
	return New(KindConnectionClosed, reason)
}

func FrameDecodingError(reason string) *Error {
	return New(KindFrameDecodingError, reason)
}
