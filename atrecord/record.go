// Package atrecord models the common repository-record envelope returned
// by the generic com.atproto.repo.* calls: a collection/rkey/CID triple
// around an untyped JSON payload. Typed, schema-generated record structs
// are out of scope here; callers that need them layer code generation on
// top of this envelope.
package atrecord

import (
	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atpjson"
)

// Record is the envelope returned by GetRecord/PutRecord.
type Record struct {
	Collection atid.NSID
	RKey       string
	CID        *atid.CIDLink
	Value      atpjson.Value
}
