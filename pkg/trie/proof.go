package trie

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// ErrMalformedProof is returned when a proof blob fails to decode, or the
// walk needs a node the bag does not contain.
var ErrMalformedProof = errors.New("trie: malformed proof")

// ErrUnusedProofNode is returned when proof contains a blob that the walk
// from root to key never visits: a relayer should never accept a proof
// carrying nodes it cannot account for, since it signals either a buggy
// RPC endpoint or an attempt to pad the proof with unrelated state.
var ErrUnusedProofNode = errors.New("trie: unused proof node")

// VerifyProof checks that proof (a bag of encoded trie-node blobs, as
// returned by a state_getReadProof-style RPC) resolves key against root.
// It returns the stored value and true if key is present, nil and false
// (with a nil error) if the proof demonstrates key's absence, and a
// non-nil error if proof itself is malformed or contains unused nodes.
func VerifyProof(root util.Hash256, key []byte, proof [][]byte) ([]byte, bool, error) {
	values, err := VerifyProofBatch(root, [][]byte{key}, proof)
	if err != nil {
		return nil, false, err
	}
	v, found := values[string(key)]
	return v, found, nil
}

// VerifyProofBatch checks proof against root for every key at once: the
// single-key relayer RPCs a bridge batches together (one messages proof
// spans an entire nonce range, sharing trie nodes along the way) all share
// one bag, so unused-node rejection only fires when a blob is unused by
// every key's walk, not just one of them.
func VerifyProofBatch(root util.Hash256, keys [][]byte, proof [][]byte) (map[string][]byte, error) {
	bag := make(map[util.Hash256]Node, len(proof))
	for _, blob := range proof {
		n, err := DecodeNode(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
		}
		bag[hashOf(blob)] = n
	}

	used := make(map[util.Hash256]bool, len(proof))

	var walk func(h util.Hash256, path []byte) ([]byte, bool, error)
	walk = func(h util.Hash256, path []byte) ([]byte, bool, error) {
		n, ok := bag[h]
		if !ok {
			return nil, false, fmt.Errorf("%w: node %s not present", ErrMalformedProof, h.StringBE())
		}
		used[h] = true
		switch tn := n.(type) {
		case *LeafNode:
			if len(path) == 0 {
				return tn.Value, true, nil
			}
			return nil, false, nil
		case *ExtensionNode:
			if len(path) < len(tn.Key) || !bytes.Equal(path[:len(tn.Key)], tn.Key) {
				return nil, false, nil
			}
			return walk(tn.Next.Hash(), path[len(tn.Key):])
		case *BranchNode:
			if len(path) == 0 {
				if tn.Children[lastChild] == nil {
					return nil, false, nil
				}
				return walk(tn.Children[lastChild].Hash(), nil)
			}
			child := tn.Children[path[0]]
			if child == nil {
				return nil, false, nil
			}
			return walk(child.Hash(), path[1:])
		case *HashNode:
			return walk(tn.hash, path)
		default:
			return nil, false, fmt.Errorf("%w: unexpected node type", ErrMalformedProof)
		}
	}

	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, found, err := walk(root, toNibbles(key))
		if err != nil {
			return nil, err
		}
		if found {
			values[string(key)] = value
		}
	}

	for h := range bag {
		if !used[h] {
			return nil, fmt.Errorf("%w: %s", ErrUnusedProofNode, h.StringBE())
		}
	}
	return values, nil
}
