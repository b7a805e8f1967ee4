package trie

import "github.com/nspcc-dev/bridge-relay/pkg/util"

// Store is the backing key-value store a Trie flushes built nodes to,
// addressed by node hash. Used only by the in-memory trie builder that
// test code and local fixtures use to produce proofs; the verifier itself
// (VerifyProof) never touches a Store, only the bag of blobs it is handed.
type Store interface {
	Get(hash util.Hash256) ([]byte, bool)
	Put(hash util.Hash256, value []byte)
}

// MemStore is an in-memory Store, sufficient for building fixtures and
// generating proofs in tests.
type MemStore struct {
	m map[util.Hash256][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[util.Hash256][]byte)}
}

func (s *MemStore) Get(hash util.Hash256) ([]byte, bool) {
	b, ok := s.m[hash]
	return b, ok
}

func (s *MemStore) Put(hash util.Hash256, value []byte) {
	s.m[hash] = value
}
