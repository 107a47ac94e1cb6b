package xrpc

import (
	"context"
	"encoding/json"

	"github.com/bluesky-go/atproto/atid"
	"github.com/bluesky-go/atproto/atperr"
	"github.com/bluesky-go/atproto/atpjson"
	"github.com/bluesky-go/atproto/atrecord"
)

type recordEnvelope struct {
	URI   string          `json:"uri"`
	CID   string          `json:"cid"`
	Value json.RawMessage `json:"value"`
}

// GetRecord performs com.atproto.repo.getRecord and decodes the result
// into an atrecord.Record. A 404 response is reported as
// atperr.RecordNotFound rather than the generic XRPC error.
func (c *Client) GetRecord(ctx context.Context, repo atid.DID, collection atid.NSID, rkey string) (*atrecord.Record, error) {
	params := map[string]string{
		"repo":       repo.String(),
		"collection": collection.String(),
		"rkey":       rkey,
	}

	var env recordEnvelope
	if err := c.Query(ctx, "com.atproto.repo.getRecord", params, &env); err != nil {
		if apiErr, ok := err.(*atperr.Error); ok && apiErr.Kind == atperr.KindXRPCError && apiErr.Status == 404 {
			return nil, atperr.RecordNotFound(collection.String(), rkey)
		}
		return nil, err
	}

	var value atpjson.Value
	if len(env.Value) > 0 {
		if err := json.Unmarshal(env.Value, &value); err != nil {
			return nil, atperr.DecodingError("record-value", err.Error())
		}
	}

	cidLink, hasCID := atid.NewCIDLink(env.CID)
	rec := &atrecord.Record{Collection: collection, RKey: rkey, Value: value}
	if hasCID {
		rec.CID = &cidLink
	}
	return rec, nil
}

type putRecordInput struct {
	Repo       string        `json:"repo"`
	Collection string        `json:"collection"`
	RKey       string        `json:"rkey,omitempty"`
	Record     atpjson.Value `json:"record"`
	SwapRecord string        `json:"swapRecord,omitempty"`
	Validate   *bool         `json:"validate,omitempty"`
}

// PutRecord performs com.atproto.repo.putRecord (which also creates a
// record absent a prior rkey match), returning a Record built from the
// given collection, rkey and value plus the CID the service reports.
func (c *Client) PutRecord(ctx context.Context, repo atid.DID, collection atid.NSID, rkey string, value atpjson.Value) (*atrecord.Record, error) {
	input := putRecordInput{
		Repo:       repo.String(),
		Collection: collection.String(),
		RKey:       rkey,
		Record:     value,
	}

	var out recordEnvelope
	if err := c.Procedure(ctx, "com.atproto.repo.putRecord", input, &out); err != nil {
		return nil, err
	}

	cidLink, hasCID := atid.NewCIDLink(out.CID)
	rec := &atrecord.Record{Collection: collection, RKey: rkey, Value: value}
	if hasCID {
		rec.CID = &cidLink
	}
	return rec, nil
}

type deleteRecordInput struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	RKey       string `json:"rkey"`
	SwapRecord string `json:"swapRecord,omitempty"`
}

// DeleteRecord performs com.atproto.repo.deleteRecord.
func (c *Client) DeleteRecord(ctx context.Context, repo atid.DID, collection atid.NSID, rkey string) error {
	input := deleteRecordInput{
		Repo:       repo.String(),
		Collection: collection.String(),
		RKey:       rkey,
	}
	return c.Procedure(ctx, "com.atproto.repo.deleteRecord", input, nil)
}
