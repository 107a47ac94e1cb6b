package mst

import (
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/bluesky-go/atproto/car"
)

// BlockStore is the external collaborator MST traversal fetches node
// bytes through: put/get/has/delete plus a count.
type BlockStore interface {
	Put(data []byte) (cid.Cid, error)
	Get(c cid.Cid) ([]byte, bool)
	Has(c cid.Cid) bool
	Delete(c cid.Cid)
	Count() int
}

// MemoryBlockStorage is the in-memory BlockStore used by tests. Mutation is protected by a mutex. CIDs
// are derived as a real multihash-based CIDv1 (car.DeriveCID), so the
// store is content-addressed rather than keyed by an arbitrary hash.
type MemoryBlockStorage struct {
	mu     sync.Mutex
	blocks map[cid.Cid][]byte
}

// NewMemoryBlockStorage constructs an empty MemoryBlockStorage.
func NewMemoryBlockStorage() *MemoryBlockStorage {
	return &MemoryBlockStorage{blocks: make(map[cid.Cid][]byte)}
}

func (s *MemoryBlockStorage) Put(data []byte) (cid.Cid, error) {
	c, err := car.DeriveCID(data)
	if err != nil {
		return cid.Undef, err
	}
	s.mu.Lock()
	s.blocks[c] = data
	s.mu.Unlock()
	return c, nil
}

func (s *MemoryBlockStorage) Get(c cid.Cid) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blocks[c]
	return data, ok
}

func (s *MemoryBlockStorage) Has(c cid.Cid) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blocks[c]
	return ok
}

// Delete removes c's block. A no-op if c is not present
// idempotence law.
func (s *MemoryBlockStorage) Delete(c cid.Cid) {
	s.mu.Lock()
	delete(s.blocks, c)
	s.mu.Unlock()
}

func (s *MemoryBlockStorage) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blocks)
}
