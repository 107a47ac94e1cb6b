package atid

import (
	"encoding/json"

	"github.com/bluesky-go/atproto/atperr"
)

// CIDLink is a content-address string. It has no structural validation in
// this subsystem beyond non-empty.
type CIDLink struct {
	cid string
}

// NewCIDLink wraps an already-computed CID string.
func NewCIDLink(cid string) (CIDLink, bool) {
	if cid == "" {
		return CIDLink{}, false
	}
	return CIDLink{cid: cid}, true
}

func (c CIDLink) String() string { return c.cid }
func (c CIDLink) IsZero() bool   { return c.cid == "" }

type cidLinkEnvelope struct {
	Link string `json:"$link"`
}

// MarshalJSON emits the structured {"$link": "..."} envelope.
func (c CIDLink) MarshalJSON() ([]byte, error) {
	return json.Marshal(cidLinkEnvelope{Link: c.cid})
}

// UnmarshalJSON accepts both the structured envelope and a bare string.
func (c *CIDLink) UnmarshalJSON(data []byte) error {
	var envelope cidLinkEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Link != "" {
		c.cid = envelope.Link
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return atperr.DecodingError("cid-link", "data-corrupted")
	}
	if s == "" {
		return atperr.DecodingError("cid-link", "data-corrupted")
	}
	c.cid = s
	return nil
}
