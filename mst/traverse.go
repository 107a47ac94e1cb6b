package mst

import (
	"github.com/ipfs/go-cid"

	"github.com/bluesky-go/atproto/atperr"
)

// Record is a single reconstructed key/value pair yielded by a walk.
type Record struct {
	Key   string
	Value cid.Cid
}

// Walk performs an in-order traversal: fetch the node bytes for root
// from store, then visit the left subtree, each entry in turn
// (reconstructing its full key against the previous entry's key), and
// the right subtree hanging off that entry.
func Walk(store BlockStore, root cid.Cid) ([]Record, error) {
	var out []Record
	if err := walkInto(store, root, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkInto(store BlockStore, root cid.Cid, out *[]Record) error {
	data, ok := store.Get(root)
	if !ok {
		return atperr.MSTError("block not found for CID " + root.String())
	}
	node, err := DecodeNode(data)
	if err != nil {
		return err
	}

	if node.Left != nil {
		if err := walkInto(store, node.Left.Cid, out); err != nil {
			return err
		}
	}

	previousKey := ""
	for _, entry := range node.Entries {
		key := entry.ReconstructKey(previousKey)
		*out = append(*out, Record{Key: key, Value: entry.Value.Cid})
		previousKey = key

		if entry.Right != nil {
			if err := walkInto(store, entry.Right.Cid, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup walks root the same way Walk does but returns as soon as key is
// found. The second return value is false when key is absent from the
// subtree rooted at root.
func Lookup(store BlockStore, root cid.Cid, key string) (cid.Cid, bool, error) {
	return lookupInto(store, root, key)
}

func lookupInto(store BlockStore, root cid.Cid, key string) (cid.Cid, bool, error) {
	data, ok := store.Get(root)
	if !ok {
		return cid.Undef, false, atperr.MSTError("block not found for CID " + root.String())
	}
	node, err := DecodeNode(data)
	if err != nil {
		return cid.Undef, false, err
	}

	previousKey := ""
	for _, entry := range node.Entries {
		entryKey := entry.ReconstructKey(previousKey)
		if entryKey == key {
			return entry.Value.Cid, true, nil
		}
		if key < entryKey {
			if previousKey == "" && node.Left != nil {
				return lookupInto(store, node.Left.Cid, key)
			}
			return cid.Undef, false, nil
		}
		previousKey = entryKey
		if entry.Right != nil {
			if v, found, err := lookupInto(store, entry.Right.Cid, key); err != nil {
				return cid.Undef, false, err
			} else if found {
				return v, true, nil
			}
		}
	}

	if node.Left != nil && len(node.Entries) == 0 {
		return lookupInto(store, node.Left.Cid, key)
	}

	return cid.Undef, false, nil
}
