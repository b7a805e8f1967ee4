// Package trie implements the Merkle-Patricia storage-proof verifier
// (spec §4.A): decoding a bag of trie-node blobs handed back by a source
// chain's state_getReadProof RPC and walking it against a known, oracle
// -attested state root to recover (or disprove) a single storage value.
//
// The node shapes (LeafNode/ExtensionNode/BranchNode/HashNode, the 17th
// "value" branch slot) are grounded on pkg/core/mpt's node/proof tests;
// unlike that package this one only ever verifies proofs handed to it by a
// remote chain, so it carries no garbage-collection or persistence modes.
package trie

import (
	"errors"

	"github.com/nspcc-dev/bridge-relay/pkg/codec"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"golang.org/x/crypto/blake2b"
)

// NodeType is the one-byte discriminant prefixing every encoded node.
type NodeType byte

// Node type discriminants. 0 is reserved so a zero-valued buffer never
// silently decodes as a leaf.
const (
	LeafT NodeType = iota + 1
	ExtensionT
	BranchT
	HashT
)

// childrenCount is 16 nibble slots plus one slot (lastChild) for a value
// terminating exactly at this branch.
const (
	childrenCount = 17
	lastChild     = childrenCount - 1
)

// MaxValueLength bounds a single leaf value; MaxKeyLength bounds an
// extension's shared nibble-path length. Both guard against a malicious
// or corrupt proof blob driving unbounded allocation.
const (
	MaxValueLength = 1 << 16
	MaxKeyLength   = 1 << 10
)

var (
	// ErrTooBig is returned decoding a node whose key or value exceeds the
	// package's length bounds.
	ErrTooBig = errors.New("trie: node field exceeds maximum length")
	// errInvalidType is returned decoding an unknown node-type discriminant.
	errInvalidType = errors.New("trie: invalid node type")
)

// Node is implemented by LeafNode, ExtensionNode, BranchNode and HashNode.
type Node interface {
	Type() NodeType
	// Hash is the blake2b256 digest of Bytes(); it is what a parent node
	// or the caller's known state root references.
	Hash() util.Hash256
	// Bytes is the canonical type-prefixed encoding of the node.
	Bytes() []byte
}

func hashOf(b []byte) util.Hash256 {
	return blake2b.Sum256(b)
}

// LeafNode holds a terminal value; the key path consumed to reach it is
// implicit in its ancestors' extension keys and branch nibble indices.
type LeafNode struct {
	Value []byte

	hash    util.Hash256
	hashSet bool
}

// NewLeafNode constructs a LeafNode around value. value is not copied.
func NewLeafNode(value []byte) *LeafNode {
	return &LeafNode{Value: value}
}

func (n *LeafNode) Type() NodeType { return LeafT }

func (n *LeafNode) Bytes() []byte {
	w := codec.NewBufBinWriter()
	w.WriteB(byte(LeafT))
	w.WriteVarBytes(n.Value)
	return w.Bytes()
}

func (n *LeafNode) Hash() util.Hash256 {
	if !n.hashSet {
		n.hash = hashOf(n.Bytes())
		n.hashSet = true
	}
	return n.hash
}

// ExtensionNode holds a nibble-path shared by every key below it and a
// pointer (by hash) to the single node that continues the path.
type ExtensionNode struct {
	Key  []byte
	Next Node

	hash    util.Hash256
	hashSet bool
}

// NewExtensionNode constructs an ExtensionNode. next is typically a
// HashNode when the node is part of a proof bag, or any concrete node
// while a Trie is being built in memory.
func NewExtensionNode(key []byte, next Node) *ExtensionNode {
	return &ExtensionNode{Key: key, Next: next}
}

func (n *ExtensionNode) Type() NodeType { return ExtensionT }

func (n *ExtensionNode) Bytes() []byte {
	w := codec.NewBufBinWriter()
	w.WriteB(byte(ExtensionT))
	w.WriteVarBytes(n.Key)
	w.WriteBytes(n.Next.Hash().BytesBE())
	return w.Bytes()
}

func (n *ExtensionNode) Hash() util.Hash256 {
	if !n.hashSet {
		n.hash = hashOf(n.Bytes())
		n.hashSet = true
	}
	return n.hash
}

// BranchNode fans out on a single nibble. Children[lastChild] holds the
// value (wrapped in a LeafNode or HashNode) terminating exactly at this
// branch, if any.
type BranchNode struct {
	Children [childrenCount]Node

	hash    util.Hash256
	hashSet bool
}

// NewBranchNode constructs an empty BranchNode; all 17 slots are nil.
func NewBranchNode() *BranchNode {
	return &BranchNode{}
}

func (n *BranchNode) Type() NodeType { return BranchT }

func (n *BranchNode) Bytes() []byte {
	w := codec.NewBufBinWriter()
	w.WriteB(byte(BranchT))
	for i := 0; i < childrenCount; i++ {
		c := n.Children[i]
		w.WriteBool(c != nil)
		if c != nil {
			w.WriteBytes(c.Hash().BytesBE())
		}
	}
	return w.Bytes()
}

func (n *BranchNode) Hash() util.Hash256 {
	if !n.hashSet {
		n.hash = hashOf(n.Bytes())
		n.hashSet = true
	}
	return n.hash
}

// HashNode is a by-reference pointer to a node stored elsewhere (either a
// separate blob in a proof bag, or a separate entry in a Trie's backing
// store). Its own Hash is the reference itself.
type HashNode struct {
	hash util.Hash256
}

// NewHashNode wraps hash as a HashNode reference.
func NewHashNode(hash util.Hash256) *HashNode {
	return &HashNode{hash: hash}
}

func (n *HashNode) Type() NodeType     { return HashT }
func (n *HashNode) Hash() util.Hash256 { return n.hash }

func (n *HashNode) Bytes() []byte {
	w := codec.NewBufBinWriter()
	w.WriteB(byte(HashT))
	w.WriteBytes(n.hash.BytesBE())
	return w.Bytes()
}

// DecodeNode decodes a single type-prefixed node blob as produced by
// Bytes(). HashNode blobs are never handed out in a proof bag in
// practice, but decoding one is harmless.
func DecodeNode(b []byte) (Node, error) {
	r := codec.NewBinReaderFromBuf(b)
	t := NodeType(r.ReadB())
	switch t {
	case LeafT:
		v := r.ReadVarBytes()
		if r.Err != nil {
			return nil, r.Err
		}
		if len(v) > MaxValueLength {
			return nil, ErrTooBig
		}
		return NewLeafNode(v), nil
	case ExtensionT:
		key := r.ReadVarBytes()
		var hv util.Hash256
		hbuf := make([]byte, util.Hash256Size)
		r.ReadBytes(hbuf)
		if r.Err != nil {
			return nil, r.Err
		}
		if len(key) > MaxKeyLength {
			return nil, ErrTooBig
		}
		copy(hv[:], hbuf)
		return NewExtensionNode(key, NewHashNode(hv)), nil
	case BranchT:
		bn := NewBranchNode()
		for i := 0; i < childrenCount; i++ {
			present := r.ReadBool()
			if r.Err != nil {
				return nil, r.Err
			}
			if present {
				var hv util.Hash256
				hbuf := make([]byte, util.Hash256Size)
				r.ReadBytes(hbuf)
				if r.Err != nil {
					return nil, r.Err
				}
				copy(hv[:], hbuf)
				bn.Children[i] = NewHashNode(hv)
			}
		}
		return bn, nil
	case HashT:
		var hv util.Hash256
		hbuf := make([]byte, util.Hash256Size)
		r.ReadBytes(hbuf)
		if r.Err != nil {
			return nil, r.Err
		}
		copy(hv[:], hbuf)
		return NewHashNode(hv), nil
	default:
		return nil, errInvalidType
	}
}
