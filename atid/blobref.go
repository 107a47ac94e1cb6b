package atid

import (
	"encoding/json"

	"github.com/bluesky-go/atproto/atperr"
)

// BlobRef is a reference to a content-addressed binary blob.
type BlobRef struct {
	Ref      CIDLink `json:"ref"`
	MimeType string  `json:"mimeType"`
	Size     int64   `json:"size"`
}

type blobRefWire struct {
	Type     string  `json:"$type,omitempty"`
	Ref      CIDLink `json:"ref"`
	MimeType string  `json:"mimeType"`
	Size     int64   `json:"size"`
}

func (b BlobRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(blobRefWire{
		Type:     "blob",
		Ref:      b.Ref,
		MimeType: b.MimeType,
		Size:     b.Size,
	})
}

func (b *BlobRef) UnmarshalJSON(data []byte) error {
	var wire blobRefWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return atperr.DecodingError("blob-ref", err.Error())
	}
	if wire.Type != "" && wire.Type != "blob" {
		return atperr.DecodingError("blob-ref", "$type must be \"blob\" when present")
	}
	b.Ref = wire.Ref
	b.MimeType = wire.MimeType
	b.Size = wire.Size
	return nil
}
